// internal/types/ids.go
package types

import (
	"github.com/google/uuid"
)

type GroupID string
type RunID string
type PlanID string

// TaskID is assigned by the render backend on submission, never minted locally.
type TaskID string

func NewGroupID() GroupID {
	return GroupID(uuid.New().String())
}

func NewRunID() RunID {
	return RunID(uuid.New().String())
}

func NewPlanID() PlanID {
	return PlanID(uuid.New().String())
}
