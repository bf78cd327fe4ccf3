package relationships

import (
	"context"
	"fmt"

	"github.com/mongoose-kitchen/mongoose/internal/orm/schema"
)

// ownerAlias carries the owner key through the join query
const ownerAlias = "__owner_id"

// LoadMany loads the Target rows of every owner in ownerIDs with a single
// join query. The result maps the string form of each owner key to its rows;
// owners without links map to an empty slice.
func (l *Loader) LoadMany(ctx context.Context, jt *JoinTable, ownerIDs []interface{}) (map[string][]schema.Row, error) {
	if err := jt.validate(); err != nil {
		return nil, err
	}

	keys, err := uniqueKeys(ownerIDs)
	if err != nil {
		return nil, fmt.Errorf("invalid owner ID: %w", err)
	}

	grouped := make(map[string][]schema.Row, len(keys))
	if len(keys) == 0 {
		return grouped, nil
	}

	args := make([]interface{}, len(keys))
	for i, k := range keys {
		grouped[mustIDString(k)] = []schema.Row{}
		args[i] = schema.BindValue(k)
	}

	stmt := fmt.Sprintf(
		"SELECT t.*, j.%s AS %s FROM %s t INNER JOIN %s j ON t.%s = j.%s WHERE j.%s IN (%s)",
		jt.OwnerColumn, ownerAlias, jt.Target.Name, jt.Name,
		jt.Target.PrimaryKey(), jt.TargetColumn, jt.OwnerColumn,
		l.dialect.Placeholders(1, len(keys)),
	)

	results, err := l.query(ctx, stmt, jt.Target, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s for %d owners: %w", jt.Name, len(keys), err)
	}

	for _, row := range results {
		ownerStr, err := idToString(row[ownerAlias])
		if err != nil {
			return nil, fmt.Errorf("invalid owner ID in %s results: %w", jt.Name, err)
		}
		delete(row, ownerAlias) // Remove join artifact
		grouped[ownerStr] = append(grouped[ownerStr], row)
	}

	if err := l.db.Commit(); err != nil {
		return nil, err
	}
	return grouped, nil
}

// uniqueKeys drops nil and duplicate keys, comparing by string form
func uniqueKeys(ids []interface{}) ([]interface{}, error) {
	seen := make(map[string]bool, len(ids))
	out := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		if id == nil {
			continue
		}
		s, err := idToString(id)
		if err != nil {
			return nil, err
		}
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, id)
	}
	return out, nil
}

func mustIDString(id interface{}) string {
	s, _ := idToString(id)
	return s
}

// idToString converts an ID of any supported type to string for map keys
func idToString(id interface{}) (string, error) {
	if id == nil {
		return "", fmt.Errorf("ID cannot be nil")
	}

	switch v := id.(type) {
	case string:
		return v, nil
	case int:
		return fmt.Sprintf("%d", v), nil
	case int64:
		return fmt.Sprintf("%d", v), nil
	case int32:
		return fmt.Sprintf("%d", v), nil
	case uint:
		return fmt.Sprintf("%d", v), nil
	case uint64:
		return fmt.Sprintf("%d", v), nil
	case []byte:
		return string(v), nil
	default:
		return fmt.Sprintf("%v", v), nil
	}
}

// IDString is the map key LoadMany and LoadByKeys use for id
func IDString(id interface{}) string {
	return mustIDString(id)
}
