package render

import (
	"html/template"
	"io"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/sells-group/choropleth/internal/svg"
)

// PageData fills the HTML page template.
type PageData struct {
	Title       string
	Description string
	Session     string
	APIBase     string
	SVG         *svg.Element
	// Markup is an already serialized SVG document. It takes precedence over SVG so a
	// server can render the map once and reuse it for every page.
	Markup []byte
	// Width of the map container; read from the SVG's width attribute when zero.
	Width int
}

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; }
.container { position: relative; width: {{.Width}}px; margin: 0 auto; }
.county:hover { stroke: #333; stroke-width: 0.5; }
#tooltip { display: none; position: absolute; pointer-events: none; padding: 4px 8px; background: rgba(255,255,255,0.9); border: 1px solid #999; font-size: 12px; }
</style>
</head>
<body>
<div class="container" data-session="{{.Session}}" data-api="{{.APIBase}}">
<h1 id="title">{{.Title}}</h1>
<p id="description">{{.Description}}</p>
{{.Markup}}
<div id="tooltip"></div>
</div>
<script>
(function () {
  const root = document.querySelector('.container');
  const tooltip = document.getElementById('tooltip');
  const session = root.dataset.session;
  const api = root.dataset.api;
  let pending = Promise.resolve();

  function apply(tr) {
    const t = tr.tooltip;
    if (t.state !== 'shown') {
      tooltip.style.display = 'none';
      tooltip.removeAttribute('data-education');
      return;
    }
    tooltip.style.display = 'inline-block';
    tooltip.style.left = (t.x || 0) + 'px';
    tooltip.style.top = (t.y || 0) + 'px';
    tooltip.textContent = t.content.text;
    tooltip.setAttribute('data-education', t.content.value);
  }

  function local(path, body, p) {
    const title = p && p.querySelector('title');
    if (path === '/tooltip/hover' && title && p.dataset.education !== undefined) {
      apply({tooltip: {state: 'shown', x: body.x, y: body.y,
        content: {text: title.textContent, value: Number(p.dataset.education)}}});
    } else {
      apply({tooltip: {state: 'hidden'}});
    }
  }

  function send(path, body, p) {
    if (!api) {
      local(path, body, p);
      return;
    }
    pending = pending.then(() => fetch(api + path, {
      method: 'POST',
      headers: {'Content-Type': 'application/json'},
      body: JSON.stringify(Object.assign({session: session}, body)),
    }).then(r => r.json()).then(apply).catch(() => {}));
  }

  document.querySelectorAll('#map path').forEach(p => {
    p.addEventListener('mouseover', e => send('/tooltip/hover', {
      fips: Number(p.dataset.fips), x: e.pageX, y: e.pageY,
    }, p));
    p.addEventListener('mouseout', e => {
      const to = e.relatedTarget;
      if (to && to.closest && to.closest('#map path')) return;
      send('/tooltip/unhover', {});
    });
  });
})();
</script>
</body>
</html>
`))

// WritePage renders the interactive HTML page around an SVG document.
func WritePage(w io.Writer, data PageData) error {
	width := data.Width
	if width == 0 && data.SVG != nil {
		if v, ok := data.SVG.Get("width"); ok {
			width, _ = strconv.Atoi(v)
		}
	}
	markup := data.Markup
	if len(markup) == 0 && data.SVG != nil {
		markup = []byte(data.SVG.String())
	}

	view := struct {
		Title, Description string
		Session, APIBase   string
		Width              int
		Markup             template.HTML
	}{
		Title:       data.Title,
		Description: data.Description,
		Session:     data.Session,
		APIBase:     data.APIBase,
		Width:       width,
		Markup:      template.HTML(markup), //nolint:gosec // generated by svg.Element, text is escaped
	}
	if err := pageTmpl.Execute(w, view); err != nil {
		return eris.Wrap(err, "render: execute page template")
	}
	return nil
}
