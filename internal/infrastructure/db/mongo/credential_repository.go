package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/gestion-comercial/backoffice/internal/core/domain"
)

// CredentialRepository implements ports.CredentialStore on MongoDB. Employee
// documents carry their role name inline, so a single read materializes it.
type CredentialRepository struct {
	employees *mongo.Collection
	clients   *mongo.Collection
}

func NewCredentialRepository(db *mongo.Database) *CredentialRepository {
	return &CredentialRepository{
		employees: db.Collection(collectionEmployees),
		clients:   db.Collection(collectionClients),
	}
}

type employeeDoc struct {
	ID       int    `bson:"id"`
	Name     string `bson:"nombre"`
	Email    string `bson:"email"`
	Password string `bson:"password"`
	Role     string `bson:"rol,omitempty"`
	Status   string `bson:"estado,omitempty"`
}

type clientDoc struct {
	ID       int    `bson:"id"`
	Name     string `bson:"nombre"`
	Email    string `bson:"email"`
	Password string `bson:"password"`
}

func (r *CredentialRepository) FindEmployeeByLoginID(ctx context.Context, loginID string) (*domain.Employee, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc employeeDoc
	if err := r.employees.FindOne(ctx, bson.M{"email": loginID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPrincipalNotFound
		}
		return nil, fmt.Errorf("find employee: %w", err)
	}

	return &domain.Employee{
		ID:           doc.ID,
		Name:         doc.Name,
		Email:        doc.Email,
		PasswordHash: doc.Password,
		RoleName:     doc.Role,
		Status:       doc.Status,
	}, nil
}

func (r *CredentialRepository) FindClientByLoginID(ctx context.Context, loginID string) (*domain.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc clientDoc
	if err := r.clients.FindOne(ctx, bson.M{"email": loginID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPrincipalNotFound
		}
		return nil, fmt.Errorf("find client: %w", err)
	}

	return &domain.Client{
		ID:           doc.ID,
		Name:         doc.Name,
		Email:        doc.Email,
		PasswordHash: doc.Password,
	}, nil
}

// CreateEmployee inserts an employee document. Numeric ids are assigned by
// the caller.
func (r *CredentialRepository) CreateEmployee(ctx context.Context, e *domain.Employee) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.employees.InsertOne(ctx, employeeDoc{
		ID:       e.ID,
		Name:     e.Name,
		Email:    e.Email,
		Password: e.PasswordHash,
		Role:     e.RoleName,
		Status:   e.Status,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("employee %s already exists", e.Email)
		}
		return fmt.Errorf("insert employee: %w", err)
	}
	return nil
}
