package adoption

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/pawhome/pawhome/internal/model"
	"github.com/pawhome/pawhome/internal/repository"
)

// ErrUnknownShelter marks a request whose shelter no longer exists.
// Delivery is not retried.
var ErrUnknownShelter = errors.New("unknown shelter")

// Message is a composed shelter notification.
type Message struct {
	To      string
	ReplyTo string
	Subject string
	Body    string
}

// Notifier delivers one adoption request to its shelter.
type Notifier interface {
	Notify(ctx context.Context, req *model.AdoptionRequest) error
}

// ShelterDirectory resolves the shelter profile and contact address.
type ShelterDirectory interface {
	GetShelter(ctx context.Context, id uuid.UUID) (*model.Shelter, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// ComposeMessage builds the notification sent to shelter about req.
func ComposeMessage(req *model.AdoptionRequest, shelter *model.Shelter, to string) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Hola %s,\n\n", shelter.Name)
	fmt.Fprintf(&b, "%s quiere adoptar a %s.\n\n", req.UserName, req.PetName)
	fmt.Fprintf(&b, "Mensaje:\n%s\n\n", req.Message)
	fmt.Fprintf(&b, "Correo electrónico: %s\n", req.UserEmail)
	fmt.Fprintf(&b, "Teléfono: %s\n", req.UserPhone)

	return Message{
		To:      to,
		ReplyTo: req.UserEmail,
		Subject: fmt.Sprintf("Solicitud de adopción para %s", req.PetName),
		Body:    b.String(),
	}
}

// LogNotifier composes the shelter notification and writes it to the log.
// Outbound mail delivery plugs in behind Notifier.
type LogNotifier struct {
	directory ShelterDirectory
	logger    *slog.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(directory ShelterDirectory, logger *slog.Logger) *LogNotifier {
	return &LogNotifier{
		directory: directory,
		logger:    logger.With("component", "adoption.notifier"),
	}
}

// Notify resolves the shelter and emits the composed message.
func (n *LogNotifier) Notify(ctx context.Context, req *model.AdoptionRequest) error {
	shelter, err := n.directory.GetShelter(ctx, req.ShelterID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return fmt.Errorf("%w: %s", ErrUnknownShelter, req.ShelterID)
		}
		return fmt.Errorf("get shelter: %w", err)
	}

	user, err := n.directory.GetUserByID(ctx, req.ShelterID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return fmt.Errorf("%w: %s", ErrUnknownShelter, req.ShelterID)
		}
		return fmt.Errorf("get shelter account: %w", err)
	}

	msg := ComposeMessage(req, shelter, user.Email)
	n.logger.Info("adoption request notification",
		"request_id", req.ID,
		"shelter_uuid", req.ShelterID,
		"subject", msg.Subject,
	)
	return nil
}
