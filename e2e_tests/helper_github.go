// Copyright 2025 Aviator Technologies, Inc.
// SPDX-License-Identifier: MIT

package e2e_tests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"strings"
	"sync"
	"testing"
)

// FakeGitHub serves the part of the GitHub REST API that the backport command uses. Git objects
// and refs are read from and written to a local repository.
type FakeGitHub struct {
	URL string

	repo *GitTestRepo

	mu           sync.Mutex
	pullRequests []FakePullRequest
}

type FakePullRequest struct {
	Number int
	Title  string
	Body   string
	Base   string
	Head   string
	Labels []string
}

func NewFakeGitHub(t *testing.T, repo *GitTestRepo) *FakeGitHub {
	t.Helper()
	f := &FakeGitHub{repo: repo}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/octo/hello", f.getRepository)
	mux.HandleFunc("GET /repos/octo/hello/branches/{branch...}", f.getBranch)
	mux.HandleFunc("GET /repos/octo/hello/git/ref/heads/{branch...}", f.getRef)
	mux.HandleFunc("GET /repos/octo/hello/git/commits/{sha}", f.getCommit)
	mux.HandleFunc("GET /repos/octo/hello/git/trees/{sha}", f.getTree)
	mux.HandleFunc("POST /repos/octo/hello/git/commits", f.createCommit)
	mux.HandleFunc("POST /repos/octo/hello/git/refs", f.createRef)
	mux.HandleFunc("POST /repos/octo/hello/pulls", f.createPullRequest)
	mux.HandleFunc("POST /repos/octo/hello/issues/{number}/labels", f.addLabels)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	f.URL = server.URL
	return f
}

func (f *FakeGitHub) PullRequests() []FakePullRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]FakePullRequest(nil), f.pullRequests...)
}

func (f *FakeGitHub) git(env []string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = f.repo.RepoDir
	cmd.Env = append(os.Environ(), env...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git %v: %v: %s", args, err, stderr.String())
	}
	return strings.TrimSpace(string(out)), nil
}

func writeJSONResponse(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeNotFound(w http.ResponseWriter, message string) {
	writeJSONResponse(w, http.StatusNotFound, map[string]any{"message": message})
}

func (f *FakeGitHub) getRepository(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"name":           "hello",
		"full_name":      "octo/hello",
		"default_branch": "main",
		"owner":          map[string]any{"login": "octo"},
	})
}

func (f *FakeGitHub) getBranch(w http.ResponseWriter, r *http.Request) {
	branch := r.PathValue("branch")
	sha, err := f.git(nil, "rev-parse", "--verify", "refs/heads/"+branch)
	if err != nil {
		writeNotFound(w, "Branch not found")
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"name":   branch,
		"commit": map[string]any{"sha": sha},
	})
}

func (f *FakeGitHub) getRef(w http.ResponseWriter, r *http.Request) {
	ref := "refs/heads/" + r.PathValue("branch")
	sha, err := f.git(nil, "rev-parse", "--verify", ref)
	if err != nil {
		writeNotFound(w, "Not Found")
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"ref":    ref,
		"object": map[string]any{"sha": sha, "type": "commit"},
	})
}

func (f *FakeGitHub) getCommit(w http.ResponseWriter, r *http.Request) {
	sha := r.PathValue("sha")
	out, err := f.git(nil, "show", "-s", "--format=%T%n%P%n%an%n%ae%n%aI%n%B", sha)
	if err != nil {
		writeNotFound(w, "Not Found")
		return
	}
	lines := strings.SplitN(out, "\n", 6)
	for len(lines) < 6 {
		lines = append(lines, "")
	}
	var parents []map[string]any
	for _, p := range strings.Fields(lines[1]) {
		parents = append(parents, map[string]any{"sha": p})
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"sha":     sha,
		"message": lines[5],
		"tree":    map[string]any{"sha": lines[0]},
		"parents": parents,
		"author":  map[string]any{"name": lines[2], "email": lines[3], "date": lines[4]},
	})
}

func (f *FakeGitHub) getTree(w http.ResponseWriter, r *http.Request) {
	sha := r.PathValue("sha")
	if _, err := f.git(nil, "cat-file", "-e", sha+"^{tree}"); err != nil {
		writeNotFound(w, "Not Found")
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"sha": sha, "tree": []any{}, "truncated": false})
}

func (f *FakeGitHub) createCommit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string   `json:"message"`
		Tree    string   `json:"tree"`
		Parents []string `json:"parents"`
		Author  *struct {
			Name  string `json:"name"`
			Email string `json:"email"`
			Date  string `json:"date"`
		} `json:"author"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	args := []string{"commit-tree", req.Tree, "-m", req.Message}
	for _, p := range req.Parents {
		args = append(args, "-p", p)
	}
	var env []string
	if req.Author != nil {
		env = append(env, "GIT_AUTHOR_NAME="+req.Author.Name, "GIT_AUTHOR_EMAIL="+req.Author.Email)
		if req.Author.Date != "" {
			env = append(env, "GIT_AUTHOR_DATE="+req.Author.Date)
		}
	}
	sha, err := f.git(env, args...)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	writeJSONResponse(w, http.StatusCreated, map[string]any{
		"sha":  sha,
		"tree": map[string]any{"sha": req.Tree},
	})
}

func (f *FakeGitHub) createRef(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Ref string `json:"ref"`
		SHA string `json:"sha"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if _, err := f.git(nil, "rev-parse", "--verify", req.Ref); err == nil {
		writeJSONResponse(w, http.StatusUnprocessableEntity, map[string]any{"message": "Reference already exists"})
		return
	}
	if _, err := f.git(nil, "update-ref", req.Ref, req.SHA); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	writeJSONResponse(w, http.StatusCreated, map[string]any{
		"ref":    req.Ref,
		"object": map[string]any{"sha": req.SHA, "type": "commit"},
	})
}

func (f *FakeGitHub) createPullRequest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
		Body  string `json:"body"`
		Base  string `json:"base"`
		Head  string `json:"head"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	number := 100 + len(f.pullRequests)
	f.pullRequests = append(f.pullRequests, FakePullRequest{
		Number: number,
		Title:  req.Title,
		Body:   req.Body,
		Base:   req.Base,
		Head:   req.Head,
	})
	f.mu.Unlock()
	writeJSONResponse(w, http.StatusCreated, map[string]any{
		"number":   number,
		"html_url": fmt.Sprintf("https://github.com/octo/hello/pull/%d", number),
	})
}

func (f *FakeGitHub) addLabels(w http.ResponseWriter, r *http.Request) {
	var labels []string
	if err := json.NewDecoder(r.Body).Decode(&labels); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.pullRequests {
		if r.PathValue("number") == fmt.Sprint(f.pullRequests[i].Number) {
			f.pullRequests[i].Labels = append(f.pullRequests[i].Labels, labels...)
			writeJSONResponse(w, http.StatusOK, []any{})
			return
		}
	}
	writeNotFound(w, "Not Found")
}
