package ledger

import (
	"context"
	"errors"
	"testing"
)

func TestCustomerRepository_CreateAndGet(t *testing.T) {
	db := testDB(t)
	repo := NewCustomerRepository(db)
	ctx := context.Background()

	c := &Customer{
		Name:    "Maria Lopez",
		Email:   "maria@example.com",
		Phone:   "555-0100",
		Address: "12 Harbour St",
	}
	if err := repo.Create(ctx, c); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if c.ID == "" {
		t.Fatal("Create() should generate an ID")
	}

	got, err := repo.GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Name != "Maria Lopez" {
		t.Errorf("Name = %q, want %q", got.Name, "Maria Lopez")
	}
	if got.Email != "maria@example.com" {
		t.Errorf("Email = %q, want %q", got.Email, "maria@example.com")
	}
}

func TestCustomerRepository_GetByID_NotFound(t *testing.T) {
	db := testDB(t)
	repo := NewCustomerRepository(db)

	_, err := repo.GetByID(context.Background(), "cus-missing")
	if !errors.Is(err, ErrCustomerNotFound) {
		t.Errorf("error = %v, want ErrCustomerNotFound", err)
	}
}

func TestCustomerRepository_Update(t *testing.T) {
	db := testDB(t)
	repo := NewCustomerRepository(db)
	ctx := context.Background()

	c := seedCustomer(t, db)
	c.Name = "Renamed Customer"
	c.Phone = "555-0199"

	if err := repo.Update(ctx, c); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := repo.GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Name != "Renamed Customer" {
		t.Errorf("Name = %q, want %q", got.Name, "Renamed Customer")
	}
	if got.Phone != "555-0199" {
		t.Errorf("Phone = %q, want %q", got.Phone, "555-0199")
	}
}

func TestCustomerRepository_Update_NotFound(t *testing.T) {
	db := testDB(t)
	repo := NewCustomerRepository(db)

	err := repo.Update(context.Background(), &Customer{ID: "cus-missing", Name: "Ghost"})
	if !errors.Is(err, ErrCustomerNotFound) {
		t.Errorf("error = %v, want ErrCustomerNotFound", err)
	}
}

func TestCustomerRepository_Delete(t *testing.T) {
	db := testDB(t)
	repo := NewCustomerRepository(db)
	ctx := context.Background()

	c := seedCustomer(t, db)

	if err := repo.Delete(ctx, c.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := repo.GetByID(ctx, c.ID); !errors.Is(err, ErrCustomerNotFound) {
		t.Errorf("error after delete = %v, want ErrCustomerNotFound", err)
	}
}

func TestCustomerRepository_Delete_BlockedByLoans(t *testing.T) {
	db := testDB(t)
	repo := NewCustomerRepository(db)
	ctx := context.Background()

	c := seedCustomer(t, db)
	seedLoan(t, db, c.ID, 100000)

	err := repo.Delete(ctx, c.ID)
	if !errors.Is(err, ErrCustomerHasLoans) {
		t.Errorf("error = %v, want ErrCustomerHasLoans", err)
	}

	// Customer must still be on file.
	if _, getErr := repo.GetByID(ctx, c.ID); getErr != nil {
		t.Errorf("customer should survive blocked delete, got %v", getErr)
	}
}

func TestCustomerRepository_List(t *testing.T) {
	db := testDB(t)
	repo := NewCustomerRepository(db)
	ctx := context.Background()

	customers, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(customers) != 0 {
		t.Errorf("len = %d, want 0 on empty store", len(customers))
	}

	seedCustomer(t, db)
	seedCustomer(t, db)

	customers, err = repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(customers) != 2 {
		t.Errorf("len = %d, want 2", len(customers))
	}
}

func TestValidateCustomer(t *testing.T) {
	if err := ValidateCustomer(&Customer{Name: "Fine", Email: "a@b.c"}); err != nil {
		t.Errorf("valid customer rejected: %v", err)
	}
	if err := ValidateCustomer(&Customer{Name: ""}); err == nil {
		t.Error("empty name should be rejected")
	}
	if err := ValidateCustomer(&Customer{Name: "  "}); err == nil {
		t.Error("whitespace name should be rejected")
	}
	if err := ValidateCustomer(&Customer{Name: "X", Email: "not-an-email"}); err == nil {
		t.Error("email without @ should be rejected")
	}
}
