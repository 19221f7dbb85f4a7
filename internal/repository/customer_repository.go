// internal/repository/customer_repository.go
package repository

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/churnsight/churnsight-backend/internal/model"
)

// CustomerRepositoryInterface defines methods used by services
type CustomerRepositoryInterface interface {
	GetByID(id string) (*model.Customer, error)
	ListAll() ([]model.Customer, error)
	ReplaceAll(customers []model.Customer) error
	Count() (int, error)
}

const customerColumns = `
        customer_id, gender, senior_citizen, partner, dependents, tenure,
        phone_service, multiple_lines, internet_service, online_security,
        online_backup, device_protection, tech_support, streaming_tv,
        streaming_movies, contract, paperless_billing, payment_method,
        monthly_charges, total_charges, churn, num_admin_tickets, num_tech_tickets`

// CustomerRepository is the concrete implementation
type CustomerRepository struct {
	DB *sqlx.DB
}

// GetByID fetches a customer by its dataset ID
func (r *CustomerRepository) GetByID(id string) (*model.Customer, error) {
	var c model.Customer
	err := r.DB.Get(&c, `SELECT`+customerColumns+` FROM customers WHERE customer_id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // not found
		}
		return nil, errors.Wrapf(err, "fail to query customer %s", id)
	}
	return &c, nil
}

// ListAll fetches the whole snapshot in a stable order
func (r *CustomerRepository) ListAll() ([]model.Customer, error) {
	customers := []model.Customer{}
	err := r.DB.Select(&customers, `SELECT`+customerColumns+` FROM customers ORDER BY customer_id`)
	if err != nil {
		return nil, errors.Wrap(err, "fail to list customers")
	}
	return customers, nil
}

// Count returns the number of loaded customer rows
func (r *CustomerRepository) Count() (int, error) {
	var n int
	if err := r.DB.Get(&n, `SELECT COUNT(*) FROM customers`); err != nil {
		return 0, errors.Wrap(err, "fail to count customers")
	}
	return n, nil
}

// ReplaceAll swaps in a freshly validated snapshot in one transaction.
// The dataset is a point-in-time extract, so a reload replaces it whole
// rather than merging.
func (r *CustomerRepository) ReplaceAll(customers []model.Customer) error {
	tx, err := r.DB.Beginx()
	if err != nil {
		return errors.Wrap(err, "fail to begin customer import")
	}

	if _, err := tx.Exec(`DELETE FROM customers`); err != nil {
		tx.Rollback()
		return errors.Wrap(err, "fail to clear customers")
	}

	insert := `
        INSERT INTO customers (` + customerColumns + `)
        VALUES (:customer_id, :gender, :senior_citizen, :partner, :dependents, :tenure,
                :phone_service, :multiple_lines, :internet_service, :online_security,
                :online_backup, :device_protection, :tech_support, :streaming_tv,
                :streaming_movies, :contract, :paperless_billing, :payment_method,
                :monthly_charges, :total_charges, :churn, :num_admin_tickets, :num_tech_tickets)`
	for i := range customers {
		if _, err := tx.NamedExec(insert, &customers[i]); err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "fail to insert customer %s", customers[i].CustomerID)
		}
	}

	return tx.Commit()
}
