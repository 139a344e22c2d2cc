package web

// Markup is intentionally bare; the console's value is the pipeline behind
// it, not the chrome.
const consoleTemplates = `
{{define "login.html"}}<!doctype html>
<html>
<head><title>Attendance Console</title></head>
<body>
<h1>Attendance Console</h1>
{{range .Flashes}}<p class="flash {{.Kind}}">{{.Message}}</p>{{end}}
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
<form method="post" action="/login">
  <label>Username <input name="username" value="{{.Username}}"></label>
  <label>Password <input name="password" type="password"></label>
  <button type="submit">Sign in</button>
</form>
</body>
</html>{{end}}

{{define "dashboard.html"}}<!doctype html>
<html>
<head><title>Dashboard — Attendance Console</title></head>
<body>
<h1>Dashboard</h1>
<form method="post" action="/logout"><button type="submit">Logout</button></form>
{{range .Flashes}}<p class="flash {{.Kind}}">{{.Message}}</p>{{end}}
{{with .View}}
{{if .IsLoading}}<p>Loading...</p>{{end}}
{{if .IsError}}<p class="error">{{.Error}}</p>{{end}}
{{if .IsPopulated}}
{{if .Notice}}<p class="notice">{{.Notice}}</p>{{end}}
<section class="stats">
{{if .Stats}}
  <div class="card"><span>Total students</span><strong>{{.Stats.TotalStudents}}</strong></div>
  <div class="card"><span>Marked today</span><strong>{{.Stats.MarkedToday}}</strong></div>
  <div class="card"><span>Attendance rate</span><strong>{{.Stats.AttendanceRateToday}}%</strong></div>
{{else}}
  <div class="card"><span>Total students</span><strong>-</strong></div>
  <div class="card"><span>Marked today</span><strong>-</strong></div>
  <div class="card"><span>Attendance rate</span><strong>-</strong></div>
{{end}}
</section>
{{if .Weekly}}
<section class="weekly">
  <h2>Last 7 days</h2>
  <ul>{{range .Weekly}}<li>{{.Date}}: {{.Count}}</li>{{end}}</ul>
</section>
{{end}}
<section class="records">
  <h2>Attendance Record</h2>
  <form method="get" action="/dashboard">
    <label>Select date <input type="date" name="date" value="{{.DateKey}}"></label>
    <button type="submit">Go</button>
  </form>
  <p>Showing {{.DateLabel}}</p>
  <table>
    <thead><tr><th>Time</th><th>Student</th><th>ID</th></tr></thead>
    <tbody>
    {{if .NoRecords}}
      <tr><td colspan="3">No records yet</td></tr>
    {{else}}
      {{range .Rows}}<tr><td>{{.DisplayTime}}</td><td>{{.DisplayName}}</td><td>{{.StudentID}}</td></tr>{{end}}
    {{end}}
    </tbody>
  </table>
</section>
{{end}}
{{end}}
</body>
</html>{{end}}
`
