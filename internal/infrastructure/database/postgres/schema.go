package postgres

// Migration is one forward-only schema step. Statements run in a single
// transaction and must be safe to re-run.
type Migration struct {
	Version    int
	Name       string
	Statements []string
}

// Migrations is the ordered schema history of the application.
var Migrations = []Migration{
	{
		Version: 1,
		Name:    "create_membership_types",
		Statements: []string{`
            CREATE TABLE IF NOT EXISTS membership_types (
                id                 SMALLINT PRIMARY KEY CHECK (id BETWEEN 0 AND 255),
                name               VARCHAR(255) NOT NULL,
                sign_up_fee        NUMERIC(10,2) NOT NULL DEFAULT 0,
                duration_in_months SMALLINT NOT NULL DEFAULT 0,
                discount_rate      SMALLINT NOT NULL DEFAULT 0
            )`,
		},
	},
	{
		Version: 2,
		Name:    "create_customers",
		Statements: []string{`
            CREATE TABLE IF NOT EXISTS customers (
                id                          BIGSERIAL PRIMARY KEY,
                name                        VARCHAR(255) NOT NULL,
                birth_date                  DATE NULL,
                is_subscribed_to_newsletter BOOLEAN NOT NULL DEFAULT FALSE,
                membership_type_id          SMALLINT NOT NULL,
                CONSTRAINT customers_membership_type_id_fkey
                    FOREIGN KEY (membership_type_id) REFERENCES membership_types (id)
            )`,
			`CREATE INDEX IF NOT EXISTS idx_customers_membership_type_id ON customers (membership_type_id)`,
		},
	},
	{
		Version: 3,
		Name:    "seed_membership_types",
		Statements: []string{`
            INSERT INTO membership_types (id, name, sign_up_fee, duration_in_months, discount_rate) VALUES
                (0, 'Unknown', 0, 0, 0),
                (1, 'Pay as You Go', 0, 0, 0),
                (2, 'Monthly', 30, 1, 10),
                (3, 'Quarterly', 90, 3, 15),
                (4, 'Annual', 300, 12, 20)
            ON CONFLICT (id) DO NOTHING`,
		},
	},
	{
		Version: 4,
		Name:    "seed_customers",
		Statements: []string{`
            INSERT INTO customers (name, birth_date, is_subscribed_to_newsletter, membership_type_id)
            SELECT 'John Smith', NULL, FALSE, 1
            WHERE NOT EXISTS (SELECT 1 FROM customers WHERE name = 'John Smith')`,
			`
            INSERT INTO customers (name, birth_date, is_subscribed_to_newsletter, membership_type_id)
            SELECT 'Mary William', DATE '1990-01-01', TRUE, 2
            WHERE NOT EXISTS (SELECT 1 FROM customers WHERE name = 'Mary William')`,
		},
	},
}
