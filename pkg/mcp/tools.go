package mcp

import "github.com/mark3labs/mcp-go/mcp"

// RegisteredTools returns the tool definitions the server exposes.
func RegisteredTools() []mcp.Tool {
	return []mcp.Tool{
		listComponentsTool(),
		getComponentMetadataTool(),
		generateMetadataTool(),
		classifyPropTool(),
	}
}

func listComponentsTool() mcp.Tool {
	return mcp.NewTool("list_components",
		mcp.WithDescription("List the components eligible for generated metadata, in processing order, with their output file names. Components with hand-written metadata are omitted."),
	)
}

func getComponentMetadataTool() mcp.Tool {
	return mcp.NewTool("get_component_metadata",
		mcp.WithDescription("Build the metadata document for one component from its type declarations without writing it. Returns the document as JSON, plus a warning when extraction degraded."),
		mcp.WithString("name",
			mcp.Description("Component directory name, e.g. Button"),
			mcp.Required(),
		),
	)
}

func generateMetadataTool() mcp.Tool {
	return mcp.NewTool("generate_metadata",
		mcp.WithDescription("Write the .context.ts metadata file for one component, or for every eligible component when name is omitted. Returns the outcome or run summary."),
		mcp.WithString("name",
			mcp.Description("Component directory name. Omit to regenerate all components."),
		),
	)
}

func classifyPropTool() mcp.Tool {
	return mcp.NewTool("classify_prop",
		mcp.WithDescription("Return the documentation category (Appearance, Events, Content, Layout, State, Styling, General) assigned to a prop name."),
		mcp.WithString("name",
			mcp.Description("Prop name, e.g. onClick"),
			mcp.Required(),
		),
	)
}
