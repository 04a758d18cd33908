package msgsync

import (
	"context"
	"net/url"
	"strconv"

	"github.com/harshmohite04/Firm-Connect-sub000/internal/apiclient"
	"github.com/pkg/errors"
)

// RESTClient implements API against the portal server. Session expiry on a
// 401 is the apiclient's OnUnauthorized hook.
type RESTClient struct {
	api *apiclient.Client
}

func NewRESTClient(api *apiclient.Client) *RESTClient {
	return &RESTClient{api: api}
}

func (c *RESTClient) ListConversations(ctx context.Context) ([]Conversation, error) {
	var out []Conversation
	if err := c.api.Get(ctx, "/conversations", nil, &out); err != nil {
		return nil, errors.Wrap(err, "list conversations")
	}
	return out, nil
}

func (c *RESTClient) History(ctx context.Context, peerID uint) ([]Message, error) {
	var out []Message
	q := url.Values{"recipient_id": {strconv.FormatUint(uint64(peerID), 10)}}
	if err := c.api.Get(ctx, "/messages", q, &out); err != nil {
		return nil, errors.Wrapf(err, "history with %d", peerID)
	}
	return out, nil
}

type sendRequest struct {
	RecipientID uint   `json:"recipient_id"`
	Content     string `json:"content"`
	ClientID    string `json:"client_id"`
}

func (c *RESTClient) Send(ctx context.Context, recipientID uint, content, clientID string) (*Message, error) {
	var out Message
	in := sendRequest{RecipientID: recipientID, Content: content, ClientID: clientID}
	if err := c.api.Post(ctx, "/messages", in, &out); err != nil {
		return nil, errors.Wrapf(err, "send to %d", recipientID)
	}
	return &out, nil
}

func (c *RESTClient) MarkRead(ctx context.Context, peerID uint) error {
	path := "/conversations/" + strconv.FormatUint(uint64(peerID), 10) + "/read"
	return errors.Wrapf(c.api.Post(ctx, path, struct{}{}, nil), "mark read %d", peerID)
}
