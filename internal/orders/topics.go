package orders

const (
	TopicOrderEvents = "orders.events"
	TopicStockAlerts = "stock.alerts"
)

// Partition key = order id (product id for ledger events), so all events of
// one entity keep their order.
func PartitionKey(id string) []byte { return []byte(id) }
