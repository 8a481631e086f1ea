package collection

// Collection is the importable document wrapping an item tree.
type Collection struct {
	Info     Info                 `json:"info"`
	Item     []*Item              `json:"item"`
	Events   []Event              `json:"events"`
	Variable []CollectionVariable `json:"variable"`
}

type CollectionVariable struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type Info struct {
	Name   string `json:"name"`
	Schema string `json:"schema"`
}

// Event is a collection-level script hook.
type Event struct {
	Listen string `json:"listen"`
	Script Script `json:"script"`
}

type Script struct {
	Type string   `json:"type"`
	Exec []string `json:"exec"`
}

// New wraps items with the collection info and a single empty baseUrl variable.
func New(name string, items []*Item) *Collection {
	if items == nil {
		items = []*Item{}
	}
	return &Collection{
		Info:     Info{Name: name, Schema: SchemaURL},
		Item:     items,
		Events:   []Event{},
		Variable: []CollectionVariable{{Key: "baseUrl", Value: ""}},
	}
}
