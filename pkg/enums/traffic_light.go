package enums

// TrafficLight is the stock risk classification of an inventory row.
type TrafficLight string

const (
	TrafficRed     TrafficLight = "red"
	TrafficYellow  TrafficLight = "yellow"
	TrafficGreen   TrafficLight = "green"
	TrafficUnknown TrafficLight = "unknown"
)

func (t TrafficLight) String() string {
	return string(t)
}
