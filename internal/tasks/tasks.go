// Package tasks defines the background jobs dispatched through asynq.
package tasks

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	TypeSessionPurge = "sessions:purge"
	TypeDBProbe      = "clientdb:probe"
)

type SessionPurgePayload struct{}

type DBProbePayload struct{}

func NewSessionPurgeTask(opts ...asynq.Option) (*asynq.Task, error) {
	payloadBytes, err := json.Marshal(SessionPurgePayload{})
	if err != nil {
		return nil, err
	}

	allOpts := append(opts, asynq.Unique(10*time.Minute))
	return asynq.NewTask(TypeSessionPurge, payloadBytes, allOpts...), nil
}

func NewDBProbeTask(opts ...asynq.Option) (*asynq.Task, error) {
	payloadBytes, err := json.Marshal(DBProbePayload{})
	if err != nil {
		return nil, err
	}

	allOpts := append(opts, asynq.Unique(5*time.Minute))
	return asynq.NewTask(TypeDBProbe, payloadBytes, allOpts...), nil
}
