package sqlite

const ddlBase = `
CREATE TABLE IF NOT EXISTS meta (
  key   TEXT PRIMARY KEY,
  value TEXT
);

CREATE TABLE IF NOT EXISTS organizations (
  id   INTEGER PRIMARY KEY,
  name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
  id    INTEGER PRIMARY KEY,
  name  TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS teams (
  id   INTEGER PRIMARY KEY,
  name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS team_users (
  team_id INTEGER NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
  user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  PRIMARY KEY (team_id, user_id)
);
CREATE INDEX IF NOT EXISTS idx_team_users_user ON team_users(user_id);

CREATE TABLE IF NOT EXISTS labels (
  id   INTEGER PRIMARY KEY,
  name TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_labels_name ON labels(LOWER(name));

CREATE TABLE IF NOT EXISTS tickets (
  id              INTEGER PRIMARY KEY,
  title           TEXT NOT NULL,
  type            TEXT NOT NULL DEFAULT 'request',
  status          TEXT NOT NULL DEFAULT 'new',
  urgency         TEXT NOT NULL DEFAULT 'medium',
  impact          TEXT NOT NULL DEFAULT 'medium',
  priority        TEXT NOT NULL DEFAULT 'medium',
  organization_id INTEGER NOT NULL REFERENCES organizations(id),
  requester_id    INTEGER REFERENCES users(id) ON DELETE SET NULL,
  assignee_id     INTEGER REFERENCES users(id) ON DELETE SET NULL,
  team_id         INTEGER REFERENCES teams(id) ON DELETE SET NULL,
  created_at      INTEGER NOT NULL,
  updated_at      INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tickets_org      ON tickets(organization_id);
CREATE INDEX IF NOT EXISTS idx_tickets_status   ON tickets(status);
CREATE INDEX IF NOT EXISTS idx_tickets_assignee ON tickets(assignee_id);
CREATE INDEX IF NOT EXISTS idx_tickets_updated  ON tickets(updated_at);

CREATE TABLE IF NOT EXISTS ticket_observers (
  ticket_id INTEGER NOT NULL REFERENCES tickets(id) ON DELETE CASCADE,
  user_id   INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  PRIMARY KEY (ticket_id, user_id)
);
CREATE INDEX IF NOT EXISTS idx_ticket_observers_user ON ticket_observers(user_id);

CREATE TABLE IF NOT EXISTS ticket_labels (
  ticket_id INTEGER NOT NULL REFERENCES tickets(id) ON DELETE CASCADE,
  label_id  INTEGER NOT NULL REFERENCES labels(id) ON DELETE CASCADE,
  PRIMARY KEY (ticket_id, label_id)
);
CREATE INDEX IF NOT EXISTS idx_ticket_labels_label ON ticket_labels(label_id);

CREATE TABLE IF NOT EXISTS contracts (
  id              INTEGER PRIMARY KEY,
  name            TEXT NOT NULL,
  organization_id INTEGER NOT NULL REFERENCES organizations(id),
  start_at        INTEGER NOT NULL,
  end_at          INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_contracts_org ON contracts(organization_id);

CREATE TABLE IF NOT EXISTS contract_tickets (
  contract_id INTEGER NOT NULL REFERENCES contracts(id) ON DELETE CASCADE,
  ticket_id   INTEGER NOT NULL REFERENCES tickets(id) ON DELETE CASCADE,
  PRIMARY KEY (contract_id, ticket_id)
);
CREATE INDEX IF NOT EXISTS idx_contract_tickets_ticket ON contract_tickets(ticket_id);
`
