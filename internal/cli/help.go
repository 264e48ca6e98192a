package cli

const rootLong = `bileto-search runs Bileto ticket and contract searches against a SQLite or
PostgreSQL database.

QUERY SYNTAX
  printer                 text matched against titles (tickets) or names (contracts)
  #42                     a single id
  status:open,pending     a qualifier with alternative values
  no:assignee has:label   null and non-null checks
  -type:request NOT x     negation
  a OR b                  OR binds left to right with AND: "a OR b c" is "(a OR b) AND c"
  (a OR b) c              groups

CONFIGURATION
  Settings are read from --config (YAML), then BILETO_* environment variables,
  then the global flags below.

Run "bileto-search qualifiers tickets" for the qualifiers and sort keys of an entity.`
