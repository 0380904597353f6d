package callback

// callbackPage forwards the URL fragment, which never reaches the server on
// its own, to POST /login/callback.
const callbackPage = `<!doctype html>
<html lang="ko">
<head><meta charset="utf-8"><title>Fit-Gap 로그인</title></head>
<body>
<p id="status">로그인 처리 중...</p>
<script>
(function () {
  var status = document.getElementById("status");
  fetch("/login/callback", {
    method: "POST",
    headers: {"Content-Type": "application/json"},
    body: JSON.stringify({
      fragment: window.location.hash.replace(/^#/, ""),
      query: window.location.search.replace(/^\?/, "")
    })
  }).then(function (res) {
    return res.json().then(function (body) { return {ok: res.ok, body: body}; });
  }).then(function (r) {
    if (r.ok) {
      status.textContent = "로그인 완료. 터미널로 돌아가세요.";
    } else {
      status.textContent = (r.body && r.body.error && r.body.error.message) || "로그인 처리 실패";
    }
    history.replaceState(null, "", "/login/callback");
  }).catch(function () {
    status.textContent = "로그인 처리 실패";
  });
})();
</script>
</body>
</html>
`
