package dbal

import (
	"context"
	"fmt"

	"github.com/cybertec-postgresql/dbal/internal/errors"
)

// SavepointName returns the savepoint created for the given nesting level.
func SavepointName(level int) string {
	return fmt.Sprintf("DBAL_SAVEPOINT_%d", level)
}

// BeginTransaction opens a transaction, or a savepoint when one is already
// active.
func (c *Connection) BeginTransaction(ctx context.Context) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	if c.nestingLevel == 0 {
		if err := c.conn.Begin(ctx); err != nil {
			return c.convert(err, "")
		}
		c.nestingLevel = 1
		return nil
	}

	if !c.platform.SupportsSavepoints {
		return errors.ErrSavepointsNotSupported
	}
	name := SavepointName(c.nestingLevel + 1)
	if err := c.exec(ctx, "SAVEPOINT "+name); err != nil {
		return err
	}
	c.nestingLevel++
	return nil
}

// Commit commits the current nesting level. An inner level releases its
// savepoint; the outermost commits the transaction.
func (c *Connection) Commit(ctx context.Context) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	if c.nestingLevel == 0 {
		return errors.ErrNoActiveTransaction
	}
	if c.rollbackOnly {
		return errors.ErrCommitFailedRollbackOnly
	}

	var err error
	if c.nestingLevel == 1 {
		err = c.convert(c.conn.Commit(ctx), "")
	} else {
		err = c.exec(ctx, "RELEASE SAVEPOINT "+SavepointName(c.nestingLevel))
	}
	c.nestingLevel--
	return err
}

// RollBack rolls back the current nesting level.
func (c *Connection) RollBack(ctx context.Context) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	if c.nestingLevel == 0 {
		return errors.ErrNoActiveTransaction
	}

	if c.nestingLevel == 1 {
		c.nestingLevel = 0
		c.rollbackOnly = false
		return c.convert(c.conn.Rollback(ctx), "")
	}
	err := c.exec(ctx, "ROLLBACK TO SAVEPOINT "+SavepointName(c.nestingLevel))
	c.nestingLevel--
	return err
}

func (c *Connection) exec(ctx context.Context, sql string) error {
	if _, err := c.conn.Exec(ctx, sql); err != nil {
		return c.convert(err, sql)
	}
	return nil
}

// SetRollbackOnly marks the transaction so that only a rollback can end it.
func (c *Connection) SetRollbackOnly() error {
	if c.nestingLevel == 0 {
		return errors.ErrNoActiveTransaction
	}
	c.rollbackOnly = true
	return nil
}

func (c *Connection) IsRollbackOnly() (bool, error) {
	if c.nestingLevel == 0 {
		return false, errors.ErrNoActiveTransaction
	}
	return c.rollbackOnly, nil
}

func (c *Connection) IsTransactionActive() bool {
	return c.nestingLevel > 0
}

// TransactionNestingLevel is 0 outside a transaction.
func (c *Connection) TransactionNestingLevel() int {
	return c.nestingLevel
}

// Transactional runs fn inside a transaction level. It commits when fn
// returns nil and rolls back when fn fails or panics.
func (c *Connection) Transactional(ctx context.Context, fn func(*Connection) error) error {
	if err := c.BeginTransaction(ctx); err != nil {
		return err
	}

	settled := false
	defer func() {
		if settled {
			return
		}
		if r := recover(); r != nil {
			_ = c.RollBack(ctx)
			panic(r)
		}
	}()

	if err := fn(c); err != nil {
		settled = true
		if rbErr := c.RollBack(ctx); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback failed: %w", rbErr))
		}
		return err
	}

	settled = true
	if err := c.Commit(ctx); err != nil {
		if errors.Is(err, errors.ErrCommitFailedRollbackOnly) {
			_ = c.RollBack(ctx)
		}
		return err
	}
	return nil
}
