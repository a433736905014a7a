package models

import "time"

// SimilarUser ranks another user by the number of liked games shared with
// the requester. Ties are broken by username ascending.
type SimilarUser struct {
	Username    string `json:"username"`
	SharedLikes int    `json:"shared_likes"`
}

// Reconcile task operations. The stage names the last write that succeeded
// before compensation failed.
const (
	ReconcileOpRegister   = "register"
	ReconcileOpUnregister = "unregister"
	ReconcileOpCreate     = "create"
	ReconcileOpDelete     = "delete"
)

// ReconcileTask is a queued request to recompute a tournament's participant
// counter from the true graph edge count. Tasks are enqueued when a
// multi-store operation degraded (compensation itself failed).
type ReconcileTask struct {
	ID           string    `bson:"_id" json:"id"`
	TournamentID string    `bson:"tournament_id" json:"tournament_id"`
	Op           string    `bson:"op" json:"op"`
	Stage        string    `bson:"stage" json:"stage"`
	Attempts     int       `bson:"attempts" json:"attempts"`
	EnqueuedAt   time.Time `bson:"enqueued_at" json:"enqueued_at"`
}
