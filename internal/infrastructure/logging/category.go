package logging

type Category string
type SubCategory string
type ExtraKey string

const (
	General         Category = "General"
	IO              Category = "IO"
	Internal        Category = "Internal"
	MongoDB         Category = "MongoDB"
	RabbitMQ        Category = "RabbitMQ"
	WebSocket       Category = "WebSocket"
	Validation      Category = "Validation"
	RequestResponse Category = "RequestResponse"
	Prometheus      Category = "Prometheus"
)

const (
	// General
	Startup         SubCategory = "Startup"
	Shutdown        SubCategory = "Shutdown"
	RateLimiting    SubCategory = "RateLimiting"
	ExternalService SubCategory = "ExternalService"

	// WebSocket
	Connect       SubCategory = "Connect"
	Disconnect    SubCategory = "Disconnect"
	Authorization SubCategory = "Authorization"
	Fanout        SubCategory = "Fanout"
	Inbound       SubCategory = "Inbound"

	// MongoDB
	Persistence SubCategory = "Persistence"
)

const (
	AppName      ExtraKey = "AppName"
	LoggerName   ExtraKey = "Logger"
	ClientIp     ExtraKey = "ClientIp"
	HostIp       ExtraKey = "HostIp"
	Method       ExtraKey = "Method"
	StatusCode   ExtraKey = "StatusCode"
	BodySize     ExtraKey = "BodySize"
	Path         ExtraKey = "Path"
	Latency      ExtraKey = "Latency"
	ErrorMessage ExtraKey = "ErrorMessage"
	RoomAddress  ExtraKey = "Room"
	UserId       ExtraKey = "UserId"
	ConnectionId ExtraKey = "ConnectionId"
	EventType    ExtraKey = "EventType"
)
