/*
Package operation runs one search or search-and-replace over a list of paths.

	+-------------+
	|  Path list  |
	| (stdin, -T) |
	+------+------+
	       |
	+------+------+
	|   Filters   |
	| (--fnmatch, |
	|  --only ..) |
	+------+------+
	       |
	+------+------+
	|   Engine    |
	| (per file)  |
	+------+------+
	       |
	+------+------+
	|    Stats    |
	|  (report)   |
	+-------------+

🎯 Purpose:
- Compiles every pattern of a run up front
- Streams paths lazily from the path list through the filter chain
- Hands each surviving path to the engine, one at a time
- Renders the ranking and the closing tallies

🔄 Flow:
1. Unquotes git-quoted paths
2. Drops paths rejected by a filter stage
3. Resolves "path:N" line ranges
4. Matches, replaces and writes back

Configuration errors are returned by New and Execute before the first path is
processed. Everything that goes wrong for a single path is counted and
reported, and the run goes on.

🔍 Example:

	op, err := operation.New(operation.Options{
		Config: cfg,
		FS:     fsys.NewOS(),
		Logger: logger,
		Stdin:  os.Stdin,
	})
	if err != nil {
		return err
	}
	report, err := op.Execute(ctx)
*/
package operation
