package schedule

import (
	"github.com/2beens/corosched/internal/coros"
	"github.com/2beens/corosched/internal/workout"
)

// Entity is one calendar placement: a date plus the idInPlan link to its
// program. It carries no workout content.
type Entity struct {
	ID               string                 `json:"id,omitempty"` // server-assigned once persisted
	IDInPlan         int64                  `json:"idInPlan"`
	PlanID           string                 `json:"planId,omitempty"`
	PlanProgramID    int64                  `json:"planProgramId,omitempty"`
	HappenDay        coros.StringInt64      `json:"happenDay"`
	DayNo            int                    `json:"dayNo"`
	SortNo           int                    `json:"sortNo"`
	SortNoInPlan     int                    `json:"sortNoInPlan"`
	SortNoInSchedule int                    `json:"sortNoInSchedule"`
	ExerciseBarChart []workout.BarChartItem `json:"exerciseBarChart,omitempty"`
}

// VersionObject is the minimal mutation descriptor the backend requires for
// every diff entry. For deletes it is the only thing submitted; for creates
// and moves it travels alongside the full entity/program objects.
type VersionObject struct {
	Type          int    `json:"type"`
	ID            int64  `json:"id"`
	Status        int    `json:"status"` // workout.StatusCreate/StatusUpdate/StatusDelete
	PlanProgramID int64  `json:"planProgramId,omitempty"`
	PlanID        string `json:"planId,omitempty"`
}

// Schedule is the training/schedule/query result: the live plan state a
// mutation must be computed against.
type Schedule struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	PBVersion   int64              `json:"pbVersion"`
	MaxIDInPlan coros.FlexInt64    `json:"maxIdInPlan"`
	Entities    []Entity           `json:"entities"`
	Programs    []*workout.Program `json:"programs"`
}

func (s *Schedule) FindEntity(idInPlan int64) *Entity {
	for i := range s.Entities {
		if s.Entities[i].IDInPlan == idInPlan {
			return &s.Entities[i]
		}
	}
	return nil
}

func (s *Schedule) FindProgram(idInPlan int64) *workout.Program {
	for _, p := range s.Programs {
		if p.IDInPlan == idInPlan {
			return p
		}
	}
	return nil
}

// PlanSession is the caller-held mutable state of one plan: the optimistic
// concurrency token and the high-water mark of issued idInPlan values. The
// engine keeps no state of its own; callers pass the session into every
// mutation and persist the updated values afterwards.
type PlanSession struct {
	PlanID      string
	PBVersion   int64
	MaxIDInPlan int64
}

// Session derives a fresh per-plan session from a query result.
func (s *Schedule) Session() *PlanSession {
	return &PlanSession{
		PlanID:      s.ID,
		PBVersion:   s.PBVersion,
		MaxIDInPlan: int64(s.MaxIDInPlan),
	}
}

// Refresh updates the session in place from a newer query result.
func (ps *PlanSession) Refresh(s *Schedule) {
	ps.PlanID = s.ID
	ps.PBVersion = s.PBVersion
	ps.MaxIDInPlan = int64(s.MaxIDInPlan)
}

// NextIDInPlan returns the idInPlan the next created entity/program pair must
// use. Values strictly increase and are never reused within a plan, even
// after deletes.
func (ps *PlanSession) NextIDInPlan() int64 {
	return ps.MaxIDInPlan + 1
}
