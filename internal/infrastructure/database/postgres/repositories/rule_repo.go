package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/KeyIP-Pricing/internal/domain/pricing"
	"github.com/turtacn/KeyIP-Pricing/internal/infrastructure/database/postgres"
	"github.com/turtacn/KeyIP-Pricing/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Pricing/pkg/errors"
)

const (
	listRulesQuery = `
		SELECT rule_id, service_id, application_type, rule_key, unit, amount, variant
		FROM pricing_rules
		WHERE service_id = $1
		ORDER BY seq ASC`

	deleteRulesQuery = `DELETE FROM pricing_rules WHERE service_id = $1`

	insertRuleQuery = `
		INSERT INTO pricing_rules (rule_id, service_id, application_type, rule_key, unit, amount, variant)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	upsertServiceQuery = `
		INSERT INTO pricing_services (service_id, rule_count, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (service_id) DO UPDATE SET rule_count = EXCLUDED.rule_count, updated_at = NOW()`

	listServicesQuery = `SELECT service_id FROM pricing_services WHERE rule_count > 0 ORDER BY service_id ASC`
)

type postgresRuleRepo struct {
	conn *postgres.Connection
	log  logging.Logger
	obs  QueryObserver
}

// NewPostgresRuleRepo returns the PostgreSQL rule store.  Rules come back in
// insertion order, which ReplaceForService preserves from its input slice.
func NewPostgresRuleRepo(conn *postgres.Connection, log logging.Logger, obs QueryObserver) pricing.RuleRepository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	if obs == nil {
		obs = nopObserver{}
	}
	return &postgresRuleRepo{conn: conn, log: log, obs: obs}
}

func (r *postgresRuleRepo) ListByService(ctx context.Context, serviceID string) (rules []pricing.PricingRule, err error) {
	defer r.observe("list_rules", time.Now(), &err)

	rows, err := r.conn.DB().QueryContext(ctx, listRulesQuery, serviceID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list pricing rules")
	}
	defer rows.Close()

	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate pricing rules")
	}
	return rules, nil
}

func (r *postgresRuleRepo) ReplaceForService(ctx context.Context, serviceID string, rules []pricing.PricingRule) (err error) {
	defer r.observe("replace_rules", time.Now(), &err)

	return r.conn.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, deleteRulesQuery, serviceID); err != nil {
			return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to clear pricing rules")
		}
		for i := range rules {
			if err := insertRule(ctx, tx, serviceID, rules[i]); err != nil {
				return err
			}
		}
		if _, err := tx.ExecContext(ctx, upsertServiceQuery, serviceID, len(rules)); err != nil {
			return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to record pricing service")
		}
		r.log.Debug("pricing rules replaced", logging.String("service_id", serviceID), logging.Int("count", len(rules)))
		return nil
	})
}

func (r *postgresRuleRepo) ListServices(ctx context.Context) (ids []string, err error) {
	defer r.observe("list_services", time.Now(), &err)

	rows, err := r.conn.DB().QueryContext(ctx, listServicesQuery)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list pricing services")
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan service id")
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate pricing services")
	}
	return ids, nil
}

func (r *postgresRuleRepo) observe(op string, start time.Time, err *error) {
	r.obs.ObserveQuery(op, time.Since(start), *err)
}

func insertRule(ctx context.Context, exec queryExecutor, serviceID string, rule pricing.PricingRule) error {
	id := rule.ID
	if id == "" {
		id = uuid.NewString()
	}
	_, err := exec.ExecContext(ctx, insertRuleQuery,
		id, serviceID, string(rule.ApplicationType), string(rule.Key), string(rule.Unit), rule.Amount, rule.Variant,
	)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to insert pricing rule").WithDetail(id)
	}
	return nil
}

func scanRule(row scanner) (pricing.PricingRule, error) {
	var (
		rule               pricing.PricingRule
		appType, key, unit string
	)
	if err := row.Scan(&rule.ID, &rule.ServiceID, &appType, &key, &unit, &rule.Amount, &rule.Variant); err != nil {
		return pricing.PricingRule{}, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan pricing rule")
	}
	rule.ApplicationType = pricing.ApplicationType(appType)
	rule.Key = pricing.RuleKey(key)
	rule.Unit = pricing.RuleUnit(unit)
	return rule, nil
}

//Personal.AI order the ending
