/*
Package config holds the options of a run and loads them from profiles.

	            +-------------+
	            |   Options   |
	            |  (one run)  |
	            +------+------+
	                   |
	     +-------------+-------------+
	     |             |             |
	+----+----+   +----+----+   +----+----+
	|  JSON   |   |  YAML   |   |   HCL   |
	| Parser  |   | Parser  |   | Parser  |
	+---------+   +---------+   +---------+

🎯 Purpose:
- Describes every switch, pattern and filter of a run
- Loads run profiles from JSON, YAML or HCL files
- Validates patterns before any path is processed

🔄 Flow:
1. Picks a parser by file extension
2. Decodes the profile, unknown fields are errors
3. Validates patterns, replacement and filters
4. Command line flags override what the profile sets

🔍 Example profile (HCL):

	pattern     = "/colou?r/i"
	replacement = "color"
	multiple    = true

	filter "glob" {
	  pattern = "docs/*.md"
	}

	filter "only" {
	  pattern = "/^#/"
	  invert  = true
	}

HCL profiles can read the environment through the env object, e.g.
pattern = "/${env.TICKET}/".
*/
package config
