package runner

import (
	"context"

	"reqchain/internal/parser"
	"reqchain/internal/types"
)

// FileResult is the outcome of running one definition file.
type FileResult struct {
	File      string
	Responses []*types.Response
	Err       error // parse-level failure; Responses is empty
}

// Failed reports whether anything in the file failed.
func (fr *FileResult) Failed() bool {
	if fr.Err != nil {
		return true
	}
	for _, resp := range fr.Responses {
		if Failed(resp) {
			return true
		}
	}
	return false
}

// RunFile parses one definition file and executes its requests in order,
// sharing this runner's session.
func (r *Runner) RunFile(ctx context.Context, path string) *FileResult {
	result := &FileResult{File: path}

	defs, err := parser.Parse(path)
	if err != nil {
		result.Err = err
		return result
	}

	for i := range defs {
		resp := r.Execute(ctx, &defs[i])
		result.Responses = append(result.Responses, resp)

		if r.opts.History != nil {
			if err := r.opts.History.Save(path, resp, Failed(resp)); err != nil {
				r.log.Warn().Err(err).Msg("failed to save history")
			}
		}
	}
	return result
}

// RunDir executes every definition file of a directory in lexical
// file-name order, one shared session across all of them. Individual
// failures never stop the batch; the caller inspects the results.
func (r *Runner) RunDir(ctx context.Context, dir string) ([]*FileResult, error) {
	files, err := parser.DefinitionFiles(dir)
	if err != nil {
		return nil, err
	}

	results := make([]*FileResult, 0, len(files))
	for _, file := range files {
		results = append(results, r.RunFile(ctx, file))
	}
	return results, nil
}
