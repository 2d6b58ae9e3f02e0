package repository

import (
	"context"
	"errors"
	"fmt"

	"dreamchain/database"
	"dreamchain/events"
	"dreamchain/service"

	"github.com/jackc/pgx/v5"
)

var (
	errTxActive     = errors.New("transaction already started")
	errTxNotStarted = errors.New("no active transaction")
)

// txRepositories are the repository views bound to one transaction.
type txRepositories struct {
	users     service.UserRepository
	dreams    service.DreamRepository
	donations service.DonationRepository
}

func bindRepositories(tx pgx.Tx) *txRepositories {
	return &txRepositories{
		users:     newUserRepositoryWithTx(tx),
		dreams:    newDreamRepositoryWithTx(tx),
		donations: newDonationRepositoryWithTx(tx),
	}
}

// unitOfWork scopes one donation, dream or user mutation to a single
// read-committed transaction. Row locks taken through its repositories
// serialize concurrent writers on the same dream and donor.
type unitOfWork struct {
	db     *database.DB
	tx     pgx.Tx
	ctx    context.Context
	repos  *txRepositories
	outbox *events.TransactionalBus
}

type unitOfWorkFactory struct {
	db  *database.DB
	bus *events.Bus
}

// NewUnitOfWorkFactory returns a factory whose units flush their events to bus after commit.
func NewUnitOfWorkFactory(db *database.DB, bus *events.Bus) service.UnitOfWorkFactory {
	return &unitOfWorkFactory{db: db, bus: bus}
}

func (f *unitOfWorkFactory) Create() service.UnitOfWork {
	return &unitOfWork{
		db:     f.db,
		outbox: events.NewTransactionalBus(f.bus),
	}
}

func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return errTxActive
	}

	tx, err := u.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx, u.ctx = tx, ctx
	u.repos = bindRepositories(tx)
	return nil
}

// Commit persists the transaction and then releases queued events. Events
// are dropped if the commit fails.
func (u *unitOfWork) Commit() error {
	tx, err := u.finish()
	if err != nil {
		return err
	}

	if err := tx.Commit(u.ctx); err != nil {
		u.outbox.Discard()
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return u.outbox.Flush(u.ctx)
}

// Rollback is safe to defer; it is a no-op after Commit.
func (u *unitOfWork) Rollback() error {
	tx, err := u.finish()
	if err != nil {
		return nil
	}

	u.outbox.Discard()
	if err := tx.Rollback(u.ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	return nil
}

// finish detaches the live transaction so it is ended exactly once.
func (u *unitOfWork) finish() (pgx.Tx, error) {
	if u.tx == nil {
		return nil, errTxNotStarted
	}
	tx := u.tx
	u.tx = nil
	return tx, nil
}

func (u *unitOfWork) bound() *txRepositories {
	if u.repos == nil {
		panic("unit of work used before Begin")
	}
	return u.repos
}

func (u *unitOfWork) UserRepository() service.UserRepository {
	return u.bound().users
}

func (u *unitOfWork) DreamRepository() service.DreamRepository {
	return u.bound().dreams
}

func (u *unitOfWork) DonationRepository() service.DonationRepository {
	return u.bound().donations
}

// EventBus returns the outbox flushed on Commit.
func (u *unitOfWork) EventBus() service.EventPublisher {
	return u.outbox
}
