package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/helpdesk/ticket-system/internal/core/domain"
)

type TicketRepository struct {
	tickets   *mongo.Collection
	responses *mongo.Collection
}

func NewTicketRepository(db *mongo.Database) *TicketRepository {
	return &TicketRepository{
		tickets:   db.Collection(collectionTickets),
		responses: db.Collection(collectionResponses),
	}
}

type ticketDoc struct {
	ID          string     `bson:"_id"`
	UserID      string     `bson:"user_id"`
	Title       string     `bson:"title"`
	Description *string    `bson:"description,omitempty"`
	Status      string     `bson:"status"`
	CreatedAt   time.Time  `bson:"created_at"`
	ClosedAt    *time.Time `bson:"closed_at,omitempty"`
}

func toTicketDoc(t *domain.Ticket) ticketDoc {
	doc := ticketDoc{
		ID:          t.ID,
		UserID:      t.UserID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		CreatedAt:   t.CreatedAt.UTC(),
	}
	if t.ClosedAt != nil {
		c := t.ClosedAt.UTC()
		doc.ClosedAt = &c
	}
	return doc
}

func (d ticketDoc) toDomain() *domain.Ticket {
	t := &domain.Ticket{
		ID:          d.ID,
		UserID:      d.UserID,
		Title:       d.Title,
		Description: d.Description,
		Status:      d.Status,
		CreatedAt:   d.CreatedAt.UTC(),
	}
	if d.ClosedAt != nil {
		c := d.ClosedAt.UTC()
		t.ClosedAt = &c
	}
	return t
}

func (r *TicketRepository) FindByID(ctx context.Context, id string) (*domain.Ticket, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc ticketDoc
	if err := r.tickets.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, notFoundOr(err, domain.ErrTicketNotFound, "find ticket")
	}
	return doc.toDomain(), nil
}

// List returns tickets newest first, optionally filtered by owner.
func (r *TicketRepository) List(ctx context.Context, userID string) ([]*domain.Ticket, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if userID != "" {
		filter["user_id"] = userID
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.tickets.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	defer cur.Close(ctx)

	var docs []ticketDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode tickets: %w", err)
	}
	out := make([]*domain.Ticket, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *TicketRepository) Create(ctx context.Context, t *domain.Ticket) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.tickets.InsertOne(ctx, toTicketDoc(t)); err != nil {
		return fmt.Errorf("insert ticket: %w", err)
	}
	return nil
}

func (r *TicketRepository) Update(ctx context.Context, t *domain.Ticket) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.tickets.ReplaceOne(ctx, bson.M{"_id": t.ID}, toTicketDoc(t))
	if err != nil {
		return fmt.Errorf("update ticket: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrTicketNotFound
	}
	return nil
}

// Delete removes the ticket and its responses.
func (r *TicketRepository) Delete(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.tickets.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("delete ticket: %w", err)
	}
	if res.DeletedCount == 0 {
		return false, nil
	}
	if _, err := r.responses.DeleteMany(ctx, bson.M{"ticket_id": id}); err != nil {
		return false, fmt.Errorf("delete ticket responses: %w", err)
	}
	return true, nil
}

type ResponseRepository struct {
	responses *mongo.Collection
}

func NewResponseRepository(db *mongo.Database) *ResponseRepository {
	return &ResponseRepository{responses: db.Collection(collectionResponses)}
}

type responseDoc struct {
	ID          string    `bson:"_id"`
	TicketID    string    `bson:"ticket_id"`
	ResponderID string    `bson:"responder_id"`
	Message     string    `bson:"message"`
	CreatedAt   time.Time `bson:"created_at"`
}

func (d responseDoc) toDomain() *domain.Response {
	return &domain.Response{
		ID:          d.ID,
		TicketID:    d.TicketID,
		ResponderID: d.ResponderID,
		Message:     d.Message,
		CreatedAt:   d.CreatedAt.UTC(),
	}
}

func (r *ResponseRepository) FindByID(ctx context.Context, id string) (*domain.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc responseDoc
	if err := r.responses.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, notFoundOr(err, domain.ErrResponseNotFound, "find response")
	}
	return doc.toDomain(), nil
}

func (r *ResponseRepository) ListByTicket(ctx context.Context, ticketID string) ([]*domain.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.responses.Find(ctx, bson.M{"ticket_id": ticketID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	defer cur.Close(ctx)

	var docs []responseDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode responses: %w", err)
	}
	out := make([]*domain.Response, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *ResponseRepository) Create(ctx context.Context, resp *domain.Response) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := responseDoc{
		ID:          resp.ID,
		TicketID:    resp.TicketID,
		ResponderID: resp.ResponderID,
		Message:     resp.Message,
		CreatedAt:   resp.CreatedAt.UTC(),
	}
	if _, err := r.responses.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert response: %w", err)
	}
	return nil
}

func (r *ResponseRepository) Delete(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.responses.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("delete response: %w", err)
	}
	return res.DeletedCount > 0, nil
}
