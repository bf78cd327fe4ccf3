package relationships

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mongoose-kitchen/mongoose/internal/orm/record"
	"github.com/mongoose-kitchen/mongoose/internal/orm/schema"
)

func (jt *JoinTable) validate() error {
	if jt.Name == "" || jt.OwnerColumn == "" || jt.TargetColumn == "" || jt.Target == nil {
		return ErrInvalidJoinTable
	}
	if jt.Target.PrimaryKey() == "" {
		return fmt.Errorf("%w: target %s has no key", ErrInvalidJoinTable, jt.Target.Name)
	}
	return nil
}

// Load returns the Target rows linked to ownerID, in no particular order
func (l *Loader) Load(ctx context.Context, jt *JoinTable, ownerID interface{}) ([]schema.Row, error) {
	if err := jt.validate(); err != nil {
		return nil, err
	}
	if ownerID == nil {
		return nil, ErrNilOwner
	}

	stmt := fmt.Sprintf("SELECT * FROM %s WHERE %s IN (SELECT %s FROM %s WHERE %s = %s)",
		jt.Target.Name, jt.Target.PrimaryKey(),
		jt.TargetColumn, jt.Name, jt.OwnerColumn, l.dialect.Placeholder(1))

	rows, err := l.query(ctx, stmt, jt.Target, schema.BindValue(ownerID))
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", jt.Name, err)
	}
	if err := l.db.Commit(); err != nil {
		return nil, err
	}
	return rows, nil
}

// Replace swaps every join row of ownerID for one row per id and returns the
// linked Target rows. Delete, insert and reselect run in one transaction, so
// concurrent readers never see the relationship half written. Duplicate ids
// are linked once.
func (l *Loader) Replace(ctx context.Context, jt *JoinTable, ownerID interface{}, ids []int64) ([]schema.Row, error) {
	if err := jt.validate(); err != nil {
		return nil, err
	}
	if ownerID == nil {
		return nil, ErrNilOwner
	}
	ids = uniqueIDs(ids)
	owner := schema.BindValue(ownerID)

	result := make([]schema.Row, 0, len(ids))
	err := l.db.Atomic(ctx, func(ctx context.Context) error {
		del := fmt.Sprintf("DELETE FROM %s WHERE %s = %s", jt.Name, jt.OwnerColumn, l.dialect.Placeholder(1))
		if err := l.exec(ctx, del, owner); err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		values := make([]string, len(ids))
		args := make([]interface{}, 0, 2*len(ids))
		for i, id := range ids {
			values[i] = "(" + l.dialect.Placeholders(2*i+1, 2) + ")"
			args = append(args, owner, id)
		}
		ins := fmt.Sprintf("INSERT INTO %s (%s, %s) VALUES %s",
			jt.Name, jt.OwnerColumn, jt.TargetColumn, strings.Join(values, ", "))
		if err := l.exec(ctx, ins, args...); err != nil {
			return err
		}

		keys := make([]interface{}, len(ids))
		for i, id := range ids {
			keys[i] = id
		}
		rows, err := l.selectByKeys(ctx, jt.Target, keys)
		if err != nil {
			return err
		}
		result = rows
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to replace %s: %w", jt.Name, err)
	}

	l.logger.Debug("relationship replaced",
		zap.String("join_table", jt.Name),
		zap.Any("owner", ownerID),
		zap.Int("links", len(ids)),
	)
	return result, nil
}

// LoadByKeys loads the target rows whose key is one of ids, keyed by the
// string form of each key. Used to resolve foreign keys for many owners with
// one query.
func (l *Loader) LoadByKeys(ctx context.Context, target *schema.Table, ids []interface{}) (map[string]schema.Row, error) {
	keys, err := uniqueKeys(ids)
	if err != nil {
		return nil, err
	}
	found := make(map[string]schema.Row, len(keys))
	if len(keys) == 0 {
		return found, nil
	}

	rows, err := l.selectByKeys(ctx, target, keys)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", target.Name, err)
	}
	for _, row := range rows {
		idStr, err := idToString(row[target.PrimaryKey()])
		if err != nil {
			return nil, fmt.Errorf("invalid key in %s results: %w", target.Name, err)
		}
		found[idStr] = row
	}

	if err := l.db.Commit(); err != nil {
		return nil, err
	}
	return found, nil
}

func (l *Loader) selectByKeys(ctx context.Context, target *schema.Table, keys []interface{}) ([]schema.Row, error) {
	args := make([]interface{}, len(keys))
	for i, k := range keys {
		args[i] = schema.BindValue(k)
	}
	stmt := fmt.Sprintf("SELECT * FROM %s WHERE %s IN (%s)",
		target.Name, target.PrimaryKey(), l.dialect.Placeholders(1, len(keys)))
	return l.query(ctx, stmt, target, args...)
}

func (l *Loader) query(ctx context.Context, stmt string, table *schema.Table, args ...interface{}) ([]schema.Row, error) {
	l.logger.Debug("sql", zap.String("sql", stmt), zap.Int("args", len(args)))

	rows, err := l.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, &record.QueryError{Query: stmt, Err: err}
	}
	defer rows.Close()

	result, err := record.ScanRows(rows, table)
	if err != nil {
		return nil, &record.QueryError{Query: stmt, Err: err}
	}
	return result, nil
}

func (l *Loader) exec(ctx context.Context, stmt string, args ...interface{}) error {
	l.logger.Debug("sql", zap.String("sql", stmt), zap.Int("args", len(args)))

	if _, err := l.db.ExecContext(ctx, stmt, args...); err != nil {
		return &record.QueryError{Query: stmt, Err: err}
	}
	return nil
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
