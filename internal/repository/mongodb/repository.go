package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/techsolutionsutrecht/offerte/internal/domain/models"
)

const (
	invoicesCollection  = "invoices"
	documentsCollection = "documents"
)

// Repository defines the record and artifact storage operations.
type Repository interface {
	Get(ctx context.Context, id string) (models.Invoice, error)
	GetAll(ctx context.Context) ([]models.Invoice, error)
	Upsert(ctx context.Context, invoice models.Invoice) error
	Delete(ctx context.Context, id string) error
	SaveDocument(ctx context.Context, doc models.Document) error
	GetDocument(ctx context.Context, invoiceID string) (models.Document, error)
}

// MongoDBRepository implements the Repository interface for MongoDB.
type MongoDBRepository struct {
	client *mongo.Client
	dbName string
	logger *zap.Logger
}

// NewMongoDBRepository creates a new MongoDB repository.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string, logger *zap.Logger) (*MongoDBRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDBRepository{
		client: client,
		dbName: dbName,
		logger: logger,
	}, nil
}

func (r *MongoDBRepository) invoices() *mongo.Collection {
	return r.client.Database(r.dbName).Collection(invoicesCollection)
}

func (r *MongoDBRepository) documents() *mongo.Collection {
	return r.client.Database(r.dbName).Collection(documentsCollection)
}

// Get loads a single invoice by id.
func (r *MongoDBRepository) Get(ctx context.Context, id string) (models.Invoice, error) {
	var invoice models.Invoice
	err := r.invoices().FindOne(ctx, bson.M{"_id": id}).Decode(&invoice)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Invoice{}, fmt.Errorf("invoice %s: %w", id, models.ErrRecordNotFound)
	}
	if err != nil {
		return models.Invoice{}, fmt.Errorf("failed to load invoice %s: %w", id, err)
	}
	return invoice, nil
}

// GetAll returns every invoice, newest first.
func (r *MongoDBRepository) GetAll(ctx context.Context) ([]models.Invoice, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.invoices().Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer cursor.Close(ctx)

	invoices := make([]models.Invoice, 0)
	if err := cursor.All(ctx, &invoices); err != nil {
		return nil, fmt.Errorf("failed to decode invoices: %w", err)
	}
	return invoices, nil
}

// Upsert replaces the whole invoice document, inserting it when absent.
// Concurrent writers of the same id overwrite each other.
func (r *MongoDBRepository) Upsert(ctx context.Context, invoice models.Invoice) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := r.invoices().ReplaceOne(ctx, bson.M{"_id": invoice.ID}, invoice, opts); err != nil {
		return fmt.Errorf("%w: upsert invoice %s: %v", models.ErrPersistenceFailed, invoice.ID, err)
	}

	r.logger.Debug("invoice upserted", zap.String("invoice_id", invoice.ID), zap.String("status", string(invoice.Status)))
	return nil
}

// Delete removes an invoice and its stored document. Missing ids are ignored.
func (r *MongoDBRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.invoices().DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("%w: delete invoice %s: %v", models.ErrPersistenceFailed, id, err)
	}
	if _, err := r.documents().DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		r.logger.Warn("failed to delete stored document", zap.String("invoice_id", id), zap.Error(err))
	}
	return nil
}

// SaveDocument stores the rendered artifact of an invoice, replacing any previous one.
func (r *MongoDBRepository) SaveDocument(ctx context.Context, doc models.Document) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := r.documents().ReplaceOne(ctx, bson.M{"_id": doc.InvoiceID}, doc, opts); err != nil {
		return fmt.Errorf("%w: save document %s: %v", models.ErrPersistenceFailed, doc.FileName, err)
	}
	return nil
}

// GetDocument loads the rendered artifact of an invoice.
func (r *MongoDBRepository) GetDocument(ctx context.Context, invoiceID string) (models.Document, error) {
	var doc models.Document
	err := r.documents().FindOne(ctx, bson.M{"_id": invoiceID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Document{}, fmt.Errorf("document %s: %w", invoiceID, models.ErrDocumentNotFound)
	}
	if err != nil {
		return models.Document{}, fmt.Errorf("failed to load document %s: %w", invoiceID, err)
	}
	return doc, nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
