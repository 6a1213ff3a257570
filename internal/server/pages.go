package server

import (
	"html/template"
	"net/http"
)

// Thin page shells. All real formatting happens client-side or through the
// JSON endpoints; these exist so the protected-route redirect has somewhere
// to land.

var loginPage = template.Must(template.New("login").Parse(`<!DOCTYPE html>
<html>
<head><title>setlist — log in</title></head>
<body>
  <h1>setlist</h1>
  <form id="login-form">
    <input type="password" name="password" placeholder="Password" autofocus>
    <button type="submit">Log in</button>
    <p id="login-error"></p>
  </form>
  <script>
    const form = document.getElementById("login-form");
    form.addEventListener("submit", async (event) => {
      event.preventDefault();
      const next = new URLSearchParams(location.search).get("next") || "/";
      const password = form.elements.password.value;
      const resp = await fetch("/api/login", {
        method: "POST",
        headers: { "content-type": "application/json" },
        body: JSON.stringify({ password, next })
      });
      if (resp.ok) {
        const { redirectTo } = await resp.json();
        location.assign(redirectTo);
      } else {
        document.getElementById("login-error").textContent = await resp.text();
      }
    });
  </script>
</body>
</html>
`))

var indexPage = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><title>setlist</title></head>
<body>
  <h1>setlist</h1>
  <form id="playlist-form">
    <input type="text" name="input" placeholder="Spotify playlist URL, URI or ID" autofocus>
    <button type="submit">Fetch tracklist</button>
    <p id="playlist-error"></p>
  </form>
  <pre id="tracklist"></pre>
  <script>
    const form = document.getElementById("playlist-form");
    form.addEventListener("submit", async (event) => {
      event.preventDefault();
      const resp = await fetch("/api/playlist", {
        method: "POST",
        headers: { "content-type": "application/json" },
        body: JSON.stringify({ input: form.elements.input.value })
      });
      const out = document.getElementById("tracklist");
      const err = document.getElementById("playlist-error");
      if (resp.ok) {
        const playlist = await resp.json();
        err.textContent = "";
        out.textContent = playlist.tracks
          .map((t) => t.artist + " - " + t.title)
          .join("\n");
      } else {
        const body = await resp.json().catch(() => null);
        err.textContent = body && body.error ? body.error : "Request failed.";
        out.textContent = "";
      }
    });
  </script>
</body>
</html>
`))

// PageHandler serves the HTML page shells.
// Implements the Handler interface for registration with a Router.
type PageHandler struct{}

// Routes returns the HTTP routes this handler serves. The "/" pattern also
// makes it the fallback for unmatched paths, which it answers with 404.
func (h *PageHandler) Routes() []string {
	return []string{"/login", "/"}
}

func (h *PageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	switch r.URL.Path {
	case "/login":
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		loginPage.Execute(w, nil)
	case "/":
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		indexPage.Execute(w, nil)
	default:
		http.NotFound(w, r)
	}
}
