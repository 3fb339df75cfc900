package enums

// CardState is the display state of an event card on the dashboard.
type CardState string

const (
	CardCollapsed CardState = "collapsed"
	CardExpanding CardState = "expanding"
	CardExpanded  CardState = "expanded"
)

func (c CardState) String() string {
	return string(c)
}
