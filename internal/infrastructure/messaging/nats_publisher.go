package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/jhoicas/almacen-api/internal/application/requests"
)

var _ requests.EventPublisher = (*NATSPublisher)(nil)

// Connect abre la conexión NATS con reconexión indefinida y registra los cambios de estado.
func Connect(url, name string, log zerolog.Logger) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name(name),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Msg("nats desconectado")
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info().Str("url", c.ConnectedUrl()).Msg("nats reconectado")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return nc, nil
}

// NATSPublisher publica los eventos de solicitudes como JSON en <prefix>.<tipo>,
// p. ej. almacen.request.item_issued. Sin conexión no hace nada.
type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
}

// NewNATSPublisher construye el publicador. conn puede ser nil.
func NewNATSPublisher(conn *nats.Conn, prefix string) *NATSPublisher {
	return &NATSPublisher{conn: conn, prefix: strings.Trim(prefix, ".")}
}

// Subject subject NATS para un tipo de evento.
func (p *NATSPublisher) Subject(eventType string) string {
	if p.prefix == "" {
		return eventType
	}
	return p.prefix + "." + eventType
}

// Publish serializa y publica el evento.
func (p *NATSPublisher) Publish(ctx context.Context, evt requests.Event) error {
	if p.conn == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("serializar evento: %w", err)
	}
	msg := nats.NewMsg(p.Subject(evt.Type))
	msg.Data = data
	msg.Header.Set(nats.MsgIdHdr, evt.ID)
	if err := p.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("publicar %s: %w", msg.Subject, err)
	}
	return nil
}
