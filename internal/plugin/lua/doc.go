// Package lua runs indentscope scripts in a sandboxed gopher-lua state.
//
// Scripts see the base, table, string and math libraries and a preloaded
// module:
//
//	local scope = require("indentscope")
//
//	scope.setup({
//	  symbol = "│",
//	  draw = { delay = 50, animation = scope.gen_animation.quadratic({ easing = "out" }) },
//	  options = { border = "top" },
//	})
//
//	local s = scope.get_scope()           -- scope at the cursor
//	print(s.body.top, s.body.bottom, s.border.indent)
//	scope.draw()
//	scope.undraw()
//	local waits = scope.timings(scope.gen_animation.linear(), 10)
//
// Configuration files ending in .lua are evaluated with Configure. There
// setup() collects settings, and a returned table is merged on top.
package lua
