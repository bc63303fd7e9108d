// Package models holds the record types shared by the registry, the ledger,
// the journal and the reports: accounts, calendar dates and journal entries.
package models
