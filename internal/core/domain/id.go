package domain

import (
	"github.com/google/uuid"
)

// CallID gates every frame that belongs to one call attempt. Opaque to
// clients and never reused.
type CallID string

func NewCallID() CallID {
	return CallID(uuid.New().String())
}

func (id CallID) String() string {
	return string(id)
}
