package logging

type Category string
type SubCategory string
type ExtraKey string

const (
	General    Category = "General"
	IO         Category = "IO"
	Internal   Category = "Internal"
	RabbitMQ   Category = "RabbitMQ"
	Database   Category = "Database"
	Telegram   Category = "Telegram"
	Backend    Category = "Backend"
	Validation Category = "Validation"
	Prometheus Category = "Prometheus"
)

const (
	// General
	Startup         SubCategory = "Startup"
	Shutdown        SubCategory = "Shutdown"
	ExternalService SubCategory = "ExternalService"

	// RabbitMQ
	Connect   SubCategory = "Connect"
	Reconnect SubCategory = "Reconnect"
	Topology  SubCategory = "Topology"
	Consume   SubCategory = "Consume"
	Delivery  SubCategory = "Delivery"

	// Database
	Migration SubCategory = "Migration"

	// Telegram
	Login SubCategory = "Login"
	Send  SubCategory = "Send"
)

const (
	AppName      ExtraKey = "AppName"
	LoggerName   ExtraKey = "Logger"
	RoutingKey   ExtraKey = "RoutingKey"
	Exchange     ExtraKey = "Exchange"
	Queue        ExtraKey = "Queue"
	MasterID     ExtraKey = "MasterId"
	ChatID       ExtraKey = "ChatId"
	Outcome      ExtraKey = "Outcome"
	Attempt      ExtraKey = "Attempt"
	Delay        ExtraKey = "Delay"
	Path         ExtraKey = "Path"
	StatusCode   ExtraKey = "StatusCode"
	ErrorMessage ExtraKey = "ErrorMessage"
)
