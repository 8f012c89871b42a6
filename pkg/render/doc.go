// Package render draws navigation graphs.
//
// # Overview
//
// [ToDOT] turns a node store into a Graphviz DOT document: one box per
// tracked screen, one arrow per recorded transition. Stack pushes are solid
// arrows, modal presentations bold, containment edges dashed and labelled
// with their slot.
//
//	dot := render.ToDOT(nav.Snapshot(), render.Options{Highlight: nav.Path()})
//	svg, err := render.RenderSVG(ctx, dot)
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg).
//
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
package render
