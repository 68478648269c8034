// Package view renders sessions for terminal display and export.
//
// Core types:
//   - Viewer: Renders transcripts as text, markdown, or JSON
//
// Example usage:
//
//	viewer := view.NewViewer()
//
//	// Full transcript to the terminal
//	viewer.ViewFull(os.Stdout, sess)
//
//	// Markdown export
//	f, _ := os.Create("transcript.md")
//	viewer.ExportMarkdown(f, sess)
//
//	// Session listing
//	metas, _ := st.ListSessions()
//	viewer.FormatMetaList(os.Stdout, metas)
package view
