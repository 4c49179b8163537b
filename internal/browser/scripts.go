package browser

import (
	"encoding/json"
	"fmt"
)

// stampScript marks visible interactive elements with sequential indexes and mirrors live
// form state into attributes so the HTML snapshot reflects what the user sees.
const stampScript = `(() => {
  document.querySelectorAll('[data-agent-idx]').forEach(el => {
    el.removeAttribute('data-agent-idx');
    el.removeAttribute('data-agent-value');
    el.removeAttribute('data-agent-checked');
  });
  document.querySelectorAll('[data-agent-upload]').forEach(el => el.removeAttribute('data-agent-upload'));
  const selector = 'a[href], button, input:not([type=hidden]), select, textarea, summary, label[for], ' +
    '[role=button], [role=link], [role=checkbox], [role=radio], [role=option], [role=combobox], ' +
    '[role=tab], [role=menuitem], [role=switch], [role=textbox], [contenteditable=""], [contenteditable=true]';
  const visible = el => {
    if (el.matches('input[type=file]')) return true;
    const rect = el.getBoundingClientRect();
    if (rect.width <= 0 || rect.height <= 0) return false;
    const style = window.getComputedStyle(el);
    return style.visibility !== 'hidden' && style.display !== 'none' && style.opacity !== '0';
  };
  let idx = 0;
  for (const el of document.querySelectorAll(selector)) {
    if (idx >= %d) break;
    if (!visible(el)) continue;
    el.setAttribute('data-agent-idx', String(idx++));
    if ('value' in el && typeof el.value === 'string') el.setAttribute('data-agent-value', el.value);
    if (el.type === 'checkbox' || el.type === 'radio') el.setAttribute('data-agent-checked', String(el.checked));
    else if (el.getAttribute('aria-checked')) el.setAttribute('data-agent-checked', el.getAttribute('aria-checked'));
  }
  return {
    count: idx,
    scrollY: Math.round(window.scrollY),
    viewport: window.innerHeight,
    height: Math.round(document.documentElement.scrollHeight)
  };
})()`

type stampResult struct {
	Count    int `json:"count"`
	ScrollY  int `json:"scrollY"`
	Viewport int `json:"viewport"`
	Height   int `json:"height"`
}

// indexSelector returns the CSS selector for a stamped element.
func indexSelector(index int) string {
	return fmt.Sprintf(`[%s="%d"]`, IndexAttr, index)
}

func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func existsScript(sel string) string {
	return fmt.Sprintf(`document.querySelector(%s) !== null`, jsString(sel))
}

// selectOptionScript picks the option whose value or text matches (case-insensitive)
// and fires the events frameworks listen for. It returns the chosen option text or "".
func selectOptionScript(sel, value string) string {
	return fmt.Sprintf(`(() => {
  const el = document.querySelector(%s);
  if (!el || !el.options) return "";
  const want = %s.trim().toLowerCase();
  for (const opt of el.options) {
    if (opt.value.trim().toLowerCase() === want || opt.text.trim().toLowerCase() === want) {
      el.value = opt.value;
      el.dispatchEvent(new Event('input', {bubbles: true}));
      el.dispatchEvent(new Event('change', {bubbles: true}));
      return opt.text.trim() || opt.value;
    }
  }
  return "";
})()`, jsString(sel), jsString(value))
}

// uploadTargetScript resolves the file input behind an element: the element itself, a file
// input inside it, the input its label points to, or the only file input on the page.
func uploadTargetScript(sel string) string {
	return fmt.Sprintf(`(() => {
  const el = document.querySelector(%s);
  if (!el) return "";
  const mark = input => { input.setAttribute('data-agent-upload', '1'); return '[data-agent-upload="1"]'; };
  if (el.matches('input[type=file]')) return mark(el);
  const inner = el.querySelector('input[type=file]');
  if (inner) return mark(inner);
  const forId = el.getAttribute('for');
  if (forId) {
    const target = document.getElementById(forId);
    if (target && target.matches('input[type=file]')) return mark(target);
  }
  const scope = el.closest('form, [role=dialog]') || document;
  const inputs = scope.querySelectorAll('input[type=file]');
  return inputs.length === 1 ? mark(inputs[0]) : "";
})()`, jsString(sel))
}

func scrollScript(direction string) string {
	factor := 0.8
	if direction == "up" {
		factor = -0.8
	}
	return fmt.Sprintf(`(() => { window.scrollBy(0, window.innerHeight * %.1f); return Math.round(window.scrollY); })()`, factor)
}
