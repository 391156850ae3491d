package web

const pageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Trivia Quiz</title>
<style>
  body { font-family: system-ui, sans-serif; max-width: 40rem; margin: 3rem auto; padding: 0 1rem; }
  .grid { display: grid; grid-template-columns: 1fr 1fr; gap: .75rem; margin-top: 1rem; }
  .grid button { padding: 1rem; font-size: 1rem; cursor: pointer; }
  .grid button.correct { background: #c8f7c5; }
  .grid button.wrong { background: #f7c5c5; }
  .feedback { margin-top: 1rem; font-weight: bold; min-height: 1.5rem; }
  .error { color: #b00020; }
</style>
</head>
<body>
<h1>Trivia Quiz</h1>
<div id="quiz">
{{if eq .Phase "loading"}}<p>Loading questions...</p>{{end}}
{{if eq .Phase "load_failed"}}<p class="error">{{.Error}}</p>{{end}}
{{if eq .Phase "completed"}}<p>{{.Summary}}</p>{{end}}
{{with .Question}}<p>{{$.Counter}}</p><h2>{{.Text}}</h2>{{end}}
</div>
<div class="grid" id="options"></div>
<div class="feedback" id="feedback"></div>
<button id="restart" hidden>Restart quiz</button>
<script>
(function () {
  var state = {{.}};
  var quiz = document.getElementById("quiz");
  var options = document.getElementById("options");
  var feedback = document.getElementById("feedback");
  var restart = document.getElementById("restart");
  var timer = null;

  function text(tag, value, cls) {
    var el = document.createElement(tag);
    el.textContent = value;
    if (cls) el.className = cls;
    return el;
  }

  function render(s) {
    state = s;
    quiz.replaceChildren();
    options.replaceChildren();
    feedback.textContent = s.feedback || "";
    restart.hidden = s.phase === "in_progress" || s.phase === "loading";

    if (s.phase === "loading") quiz.append(text("p", "Loading questions..."));
    if (s.phase === "load_failed") quiz.append(text("p", s.error, "error"));
    if (s.phase === "completed") quiz.append(text("p", s.summary));
    if (s.question) {
      quiz.append(text("p", s.counter), text("h2", s.question.text));
      s.question.options.forEach(function (opt) {
        var b = text("button", opt);
        b.disabled = !!s.selected;
        if (s.selected && opt === s.correct_answer) b.className = "correct";
        else if (opt === s.selected) b.className = "wrong";
        b.onclick = function () { answer(opt); };
        options.append(b);
      });
    }
    schedule();
  }

  function schedule() {
    clearTimeout(timer);
    if (state.phase === "loading" || state.selected) {
      timer = setTimeout(refresh, 250);
    }
  }

  function call(method, path, body) {
    return fetch(path, {
      method: method,
      headers: body ? {"Content-Type": "application/json"} : {},
      body: body ? JSON.stringify(body) : undefined,
      credentials: "same-origin"
    }).then(function (r) { return r.json(); });
  }

  function refresh() { call("GET", "/api/state").then(render); }

  function answer(opt) {
    call("POST", "/api/answer", {answer: opt}).then(function (r) {
      render(r.state || (r.phase ? r : state));
    });
  }

  restart.onclick = function () { call("POST", "/api/restart").then(render); };

  render(state);
})();
</script>
</body>
</html>
`
