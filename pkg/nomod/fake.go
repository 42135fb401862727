package nomod

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
)

// FakeClient stands in for the API outside production. Links stay pending
// until SetStatus is called.
type FakeClient struct {
	checkoutBase string
	mu           sync.Mutex
	links        map[string]Link
}

func NewFakeClient(checkoutBase string) *FakeClient {
	log.Println("Nomod API key not set, using fake payment links")
	return &FakeClient{checkoutBase: checkoutBase, links: make(map[string]Link)}
}

func (f *FakeClient) CreateLink(_ context.Context, req LinkRequest) (*Link, error) {
	id := "fake_" + uuid.New().String()
	link := Link{ID: id, URL: fmt.Sprintf("%s/fake-checkout/%s", f.checkoutBase, id), Status: "created"}

	f.mu.Lock()
	f.links[id] = link
	f.mu.Unlock()

	log.Printf("Fake payment link %s created for %q (%d items)", id, req.Title, len(req.Items))
	return &link, nil
}

func (f *FakeClient) GetLink(_ context.Context, id string) (*Link, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	link, ok := f.links[id]
	if !ok {
		return nil, &APIError{StatusCode: 404, Body: `{"detail":"Not found."}`}
	}
	return &link, nil
}

// SetStatus changes the status GetLink reports for id.
func (f *FakeClient) SetStatus(id, status string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if link, ok := f.links[id]; ok {
		link.Status = status
		f.links[id] = link
	}
}
