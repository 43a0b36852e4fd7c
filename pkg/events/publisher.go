package events

import "fmt"

// ProductsChange is emitted after every product create, update or delete.
// Its payload is the full current product list.
const ProductsChange = "productsChange"

// Publisher delivers named events to interested parties. Handlers receive a
// Publisher instead of reaching for a concrete transport, so the websocket
// hub, the broker client or both can sit behind it.
type Publisher interface {
	Publish(event string, payload interface{}) error
}

// Fanout forwards each event to every wrapped publisher. A failing publisher
// does not stop delivery to the others.
type Fanout []Publisher

// Publish sends the event to all wrapped publishers and reports the
// failures, if any, as one error.
func (f Fanout) Publish(event string, payload interface{}) error {
	var failed []error
	for _, p := range f {
		if err := p.Publish(event, payload); err != nil {
			failed = append(failed, err)
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("failed to publish %s to %d publisher(s): %v", event, len(failed), failed)
	}
	return nil
}
