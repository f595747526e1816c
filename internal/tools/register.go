package tools

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Qubut/IP-Claim/packages/epo_mcp/internal/response"
)

const (
	ToolGetPublishedData    = "get_published_data"
	ToolSearchPublishedData = "search_published_data"
	ToolGetFamily           = "get_family"
	ToolGetLegal            = "get_legal"
	ToolGetRegister         = "get_register"
	ToolSearchRegister      = "search_register"
	ToolGetImage            = "get_image"
	ToolConvertNumber       = "convert_number"
	ToolGetDocumentSummary  = "get_document_summary"
)

// Names lists every tool in registration order.
func Names() []string {
	return []string{
		ToolGetPublishedData,
		ToolSearchPublishedData,
		ToolGetFamily,
		ToolGetLegal,
		ToolGetRegister,
		ToolSearchRegister,
		ToolGetImage,
		ToolConvertNumber,
		ToolGetDocumentSummary,
	}
}

// Register adds every tool to server. Results carry the envelope both as
// structured content and as JSON text.
func Register(server *mcp.Server, svc *Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name: ToolGetPublishedData,
		Description: "Retrieve published patent information (bibliographic data, abstract, claims, description, " +
			"full text, equivalents or images) from the EPO Open Patent Services. " + inputDataDescription,
	}, handler(svc.GetPublishedData))

	mcp.AddTool(server, &mcp.Tool{
		Name: ToolSearchPublishedData,
		Description: "Search published patent documents with a CQL (Contextual Query Language) expression. " +
			"range_end is at most 1000.",
	}, handler(svc.SearchPublishedData))

	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolGetFamily,
		Description: "Retrieve the INPADOC patent family of a document. " + inputDataDescription,
	}, handler(svc.GetFamily))

	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolGetLegal,
		Description: "Retrieve legal status events of a document. " + inputDataDescription,
	}, handler(svc.GetLegal))

	mcp.AddTool(server, &mcp.Tool{
		Name: ToolGetRegister,
		Description: "Retrieve European Patent Register data. Only the epodoc notation is accepted, " +
			`e.g. {"number":"EP99203729"}; a country_code is rejected.`,
	}, handler(svc.GetRegister))

	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolSearchRegister,
		Description: "Search the European Patent Register with a CQL expression. range_end is at most 1000.",
	}, handler(svc.SearchRegister))

	mcp.AddTool(server, &mcp.Tool{
		Name: ToolGetImage,
		Description: "Retrieve one page of a patent image. path is a link returned by an images inquiry " +
			"(get_published_data with endpoint images).",
	}, svc.imageHandler)

	mcp.AddTool(server, &mcp.Tool{
		Name: ToolConvertNumber,
		Description: "Convert a patent number between the original, epodoc and docdb formats. " +
			"With input_format original (default) country_code and kind_code are optional.",
	}, handler(svc.ConvertNumber))

	mcp.AddTool(server, &mcp.Tool{
		Name: ToolGetDocumentSummary,
		Description: "Summarize the bibliographic data of a document: titles, applicants, classifications, " +
			"citations and family id. " + inputDataDescription,
	}, handler(svc.GetDocumentSummary))
}

func handler[In any](fn func(context.Context, In) (response.Envelope, error)) mcp.ToolHandlerFor[In, response.Envelope] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in In) (*mcp.CallToolResult, response.Envelope, error) {
		env, err := fn(ctx, in)
		if err != nil {
			return nil, response.Envelope{}, err
		}
		return nil, env, nil
	}
}

// imageHandler adds the image bytes as an image block next to the envelope
// when OPS answers with an image/* type.
func (s *Service) imageHandler(ctx context.Context, _ *mcp.CallToolRequest, in ImageInput) (*mcp.CallToolResult, response.Envelope, error) {
	resp, env, err := s.image(ctx, in)
	if err != nil {
		return nil, response.Envelope{}, err
	}
	if !strings.HasPrefix(strings.ToLower(resp.ContentType), "image/") {
		return nil, env, nil
	}
	text, err := json.Marshal(env)
	if err != nil {
		return nil, response.Envelope{}, err
	}
	mimeType, _, _ := strings.Cut(resp.ContentType, ";")
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(text)},
			&mcp.ImageContent{Data: resp.Body, MIMEType: strings.TrimSpace(mimeType)},
		},
	}, env, nil
}
