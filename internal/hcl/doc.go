// Package hcl loads site configuration written in HCL and translates it into
// the format-agnostic config.Model.
//
// A site file holds one `site` block:
//
//	site {
//	  title      = "startlelog"
//	  stylesheet = "/style.css"
//	  input      = "posts"
//	  output     = "public"
//	  include    = ["*.markdown", "drafts/*.md"]
//	  workers    = 8
//
//	  params = {
//	    author = upper(env.USER)
//	  }
//
//	  notify {
//	    url   = "http://localhost:3000"
//	    event = "reload"
//	  }
//	}
//
// Expressions are evaluated with the process environment available as the
// `env` object and a small set of string functions (upper, lower, format,
// join, trimspace).
package hcl
