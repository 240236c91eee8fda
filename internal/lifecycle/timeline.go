package lifecycle

import "umkmorder/internal/entity"

// Timeline returns the seven forward steps with their state relative to
// status. Every step of a cancelled order is marked cancelled.
func Timeline(status entity.OrderStatus) []entity.TimelineStep {
	steps := make([]entity.TimelineStep, 0, len(entity.ForwardStatuses))
	current := status.Index()

	for i, s := range entity.ForwardStatuses {
		state := entity.StepPending
		switch {
		case status == entity.StatusCancelled:
			state = entity.StepCancelled
		case i < current:
			state = entity.StepCompleted
		case i == current:
			state = entity.StepCurrent
		}
		steps = append(steps, entity.TimelineStep{
			Status: s,
			Label:  s.Label(),
			State:  state,
		})
	}

	return steps
}
