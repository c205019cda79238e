package domain

// Table is the mongo collection name
type Table string

const (
	TableAssets       Table = "assets"
	TableEvents       Table = "marketplace_events"
	TablePayouts      Table = "payouts"
	TableHealthChecks Table = "health_checks"
)
