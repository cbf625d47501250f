// ABOUTME: MCP resources exposing DoFo data by URI
// ABOUTME: dofo://people, dofo://people/{id}, dofo://feed, dofo://inbox

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/dofo/models"
)

const uriScheme = "dofo://"

func (h *Handlers) registerResources(server *mcp.Server) {
	server.AddResource(&mcp.Resource{
		Name:        "people",
		URI:         uriScheme + "people",
		Description: "Everyone in your circles with urgency signals",
		MIMEType:    "application/json",
	}, h.ReadResource)

	server.AddResource(&mcp.Resource{
		Name:        "feed",
		URI:         uriScheme + "feed",
		Description: "Today's home feed",
		MIMEType:    "application/json",
	}, h.ReadResource)

	server.AddResource(&mcp.Resource{
		Name:        "inbox",
		URI:         uriScheme + "inbox",
		Description: "Open inbox items",
		MIMEType:    "application/json",
	}, h.ReadResource)

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		Name:        "person",
		URITemplate: uriScheme + "people/{id}",
		Description: "One person with notes, promises, and interactions",
		MIMEType:    "application/json",
	}, h.ReadResource)
}

// ReadResource handles resource read requests.
func (h *Handlers) ReadResource(ctx context.Context, request *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := request.Params.URI
	if !strings.HasPrefix(uri, uriScheme) {
		return nil, fmt.Errorf("invalid URI scheme: expected %s", uriScheme)
	}

	parts := strings.Split(strings.TrimPrefix(uri, uriScheme), "/")

	var (
		v   any
		err error
	)
	switch {
	case parts[0] == "people" && len(parts) == 1:
		_, v, err = h.ListPeople(ctx, nil, ListPeopleInput{})
	case parts[0] == "people" && len(parts) == 2:
		_, v, err = h.GetPerson(ctx, nil, GetPersonInput{ID: parts[1]})
		if err != nil {
			if _, gerr := h.set.People.Get(ctx, parts[1]); errors.Is(gerr, models.ErrNotFound) {
				return nil, mcp.ResourceNotFoundError(uri)
			}
		}
	case parts[0] == "feed":
		_, v, err = h.HomeFeed(ctx, nil, HomeFeedInput{})
	case parts[0] == "inbox":
		_, v, err = h.ListInbox(ctx, nil, ListInboxInput{})
	default:
		return nil, mcp.ResourceNotFoundError(uri)
	}
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}}, nil
}
