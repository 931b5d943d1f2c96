package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"

	"credentialing/internal/tools"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
)

const (
	mcpServerName    = "credentialing"
	mcpServerVersion = "1.0.0"
)

// NewMCPServer publishes every tool in registry. Tools outside the
// registry's allow-list are never listed.
func NewMCPServer(registry *tools.Registry, logger *logrus.Logger) *mcpserver.MCPServer {
	s := mcpserver.NewMCPServer(
		mcpServerName,
		mcpServerVersion,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithRecovery(),
	)

	for _, tool := range registry.Tools() {
		s.AddTool(
			mcp.NewToolWithRawSchema(tool.Name, tool.Description, tool.Schema),
			toolHandler(registry, tool.Name, logger),
		)
	}

	return s
}

// toolHandler reports tool failures as error results so the session stays up.
func toolHandler(registry *tools.Registry, name string, logger *logrus.Logger) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.GetArguments()
		if args == nil {
			args = map[string]any{}
		}

		result, err := registry.Invoke(ctx, name, args)
		if err != nil {
			return mcp.NewToolResultError(formatToolError(err)), nil
		}

		data, err := json.Marshal(result)
		if err != nil {
			logger.WithError(err).WithField("tool", name).Error("failed to encode tool result")
			return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
		}

		return mcp.NewToolResultText(string(data)), nil
	}
}

func formatToolError(err error) string {
	data, marshalErr := json.Marshal(errorEnvelope{
		Error:    err.Error(),
		Kind:     tools.ErrorKind(err),
		Blockers: tools.Blockers(err),
	})
	if marshalErr != nil {
		return err.Error()
	}
	return string(data)
}

// ServeStdio runs the MCP session over in/out until ctx is cancelled or in
// reaches EOF.
func ServeStdio(ctx context.Context, s *mcpserver.MCPServer, logger *logrus.Logger, in io.Reader, out io.Writer) error {
	errorLog := logger.WriterLevel(logrus.ErrorLevel)
	defer errorLog.Close()

	stdio := mcpserver.NewStdioServer(s)
	stdio.SetErrorLogger(log.New(errorLog, "", 0))

	return stdio.Listen(ctx, in, out)
}
