package common

// DefaultCategory is assigned to expenses no category rule matches.
const DefaultCategory = "Other"

// NewCategorySentinel is the placeholder a UI offers for "create a category";
// it is never a valid category name.
const NewCategorySentinel = "Add new category..."

// DefaultCurrency is the ISO 4217 code balances are displayed in.
const DefaultCurrency = "MAD"
