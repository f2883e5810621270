// Package events fans committed project snapshots out to observers over NATS.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
	"github.com/rpggio/project365/internal/domain/project"
)

// DefaultPrefix is the subject root used when none is configured.
const DefaultPrefix = "project365"

// UpdatedSubject is where full snapshots of a project are published.
func UpdatedSubject(prefix, projectID string) string {
	return fmt.Sprintf("%s.projects.%s.updated", prefix, projectID)
}

// DeletedSubject is where project removals are announced.
func DeletedSubject(prefix, projectID string) string {
	return fmt.Sprintf("%s.projects.%s.deleted", prefix, projectID)
}

// Deleted is the payload published on DeletedSubject.
type Deleted struct {
	ID string `json:"id"`
}

// Publisher implements project.Publisher over a NATS connection.
type Publisher struct {
	nc     *nats.Conn
	prefix string
	logger *slog.Logger
}

// Connect dials NATS and returns a publisher rooted at prefix.
func Connect(url, prefix string, logger *slog.Logger) (*Publisher, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if prefix == "" {
		prefix = DefaultPrefix
	}
	nc, err := nats.Connect(url,
		nats.Name("project365"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	logger.Info("nats connected", "url", url, "prefix", prefix)
	return &Publisher{nc: nc, prefix: prefix, logger: logger}, nil
}

// ProjectUpdated publishes the committed snapshot.
func (p *Publisher) ProjectUpdated(ctx context.Context, proj *project.Project) error {
	data, err := json.Marshal(proj)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	return p.publish(ctx, UpdatedSubject(p.prefix, proj.ID), data)
}

// ProjectDeleted announces that a project is gone.
func (p *Publisher) ProjectDeleted(ctx context.Context, id string) error {
	data, err := json.Marshal(Deleted{ID: id})
	if err != nil {
		return fmt.Errorf("encoding deletion: %w", err)
	}
	return p.publish(ctx, DeletedSubject(p.prefix, id), data)
}

func (p *Publisher) publish(ctx context.Context, subject string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("nats publish %s: %w", subject, err)
	}
	p.logger.Debug("event published", "subject", subject, "bytes", len(data))
	return nil
}

// Close flushes pending messages and closes the connection.
func (p *Publisher) Close() error {
	if err := p.nc.Drain(); err != nil {
		p.nc.Close()
		return fmt.Errorf("nats drain: %w", err)
	}
	return nil
}

// Noop discards every event. It is used when no NATS URL is configured.
type Noop struct{}

func (Noop) ProjectUpdated(context.Context, *project.Project) error { return nil }

func (Noop) ProjectDeleted(context.Context, string) error { return nil }

func (Noop) Close() error { return nil }
