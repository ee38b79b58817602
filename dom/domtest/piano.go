package domtest

import (
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/pagecheck/page-contract-tests/dom"
)

// PianoHTML is a Virtual Piano page that satisfies every rule of the built-in virtual-piano
// rubric once PianoLayout has been applied.
const PianoHTML = `<!DOCTYPE html>
<html>
<head><title>Virtual Piano</title></head>
<body style="background-color: rgb(200, 200, 200)">
  <!-- keyboard -->
  <div class="container">
    <div class="white-keys">
      <kbd style="background-color: rgb(255, 255, 255); border: 2px solid rgb(0, 0, 0); width: 80px; height: 200px">A</kbd>
      <kbd style="background-color: rgb(255, 255, 255); border: 2px solid rgb(0, 0, 0); width: 80px; height: 200px">S</kbd>
      <kbd style="background-color: rgb(255, 255, 255); border: 2px solid rgb(0, 0, 0); width: 80px; height: 200px">D</kbd>
      <kbd style="background-color: rgb(255, 255, 255); border: 2px solid rgb(0, 0, 0); width: 80px; height: 200px">F</kbd>
      <kbd style="background-color: rgb(255, 255, 255); border: 2px solid rgb(0, 0, 0); width: 80px; height: 200px">G</kbd>
      <kbd style="background-color: rgb(255, 255, 255); border: 2px solid rgb(0, 0, 0); width: 80px; height: 200px">H</kbd>
      <kbd style="background-color: rgb(255, 255, 255); border: 2px solid rgb(0, 0, 0); width: 80px; height: 200px">J</kbd>
    </div>
    <div class="black-keys">
      <kbd style="background-color: rgb(0, 0, 0); width: 50px; height: 120px">W</kbd>
      <kbd style="background-color: rgb(0, 0, 0); width: 50px; height: 120px">E</kbd>
      <kbd style="background-color: rgb(0, 0, 0); width: 50px; height: 120px">T</kbd>
      <kbd style="background-color: rgb(0, 0, 0); width: 50px; height: 120px">Y</kbd>
      <kbd style="background-color: rgb(0, 0, 0); width: 50px; height: 120px">U</kbd>
    </div>
  </div>
</body>
</html>`

// White keys are 80px wide starting at x=360 on a 1280x800 viewport; black keys sit on the
// boundaries between them, with a wider gap between E and T.
var (
	whiteKeyRects = []dom.Rect{
		{Top: 300, Left: 360, Right: 440, Bottom: 500},
		{Top: 300, Left: 440, Right: 520, Bottom: 500},
		{Top: 300, Left: 520, Right: 600, Bottom: 500},
		{Top: 300, Left: 600, Right: 680, Bottom: 500},
		{Top: 300, Left: 680, Right: 760, Bottom: 500},
		{Top: 300, Left: 760, Right: 840, Bottom: 500},
		{Top: 300, Left: 840, Right: 920, Bottom: 500},
	}
	blackKeyRects = []dom.Rect{
		{Top: 300, Left: 415, Right: 465, Bottom: 420},
		{Top: 300, Left: 495, Right: 545, Bottom: 420},
		{Top: 300, Left: 655, Right: 705, Bottom: 420},
		{Top: 300, Left: 735, Right: 785, Bottom: 420},
		{Top: 300, Left: 815, Right: 865, Bottom: 420},
	}
)

// PianoLayout gives the keys of a page built from PianoHTML (or a variant of it) their
// bounding boxes.
func PianoLayout(p *Page) *Page {
	return p.
		SetRect(".white-keys > kbd", whiteKeyRects...).
		SetRect(".black-keys > kbd", blackKeyRects...).
		SetRect(".white-keys", dom.Rect{Top: 300, Left: 360, Right: 920, Bottom: 500})
}

// PlaysAudio makes every key press create one audio object, like a working piano does.
func PlaysAudio(p *Page, key string) {
	p.Record("audio", ldvalue.String(key+".mp3"))
}

// LogsKey makes every key press write one console message naming the key.
func LogsKey(p *Page, key string) {
	p.Record("console", ldvalue.ArrayOf(ldvalue.String("The '"+key+"' key is pressed.")))
}

// Piano returns a fully working Virtual Piano page.
func Piano() *Page {
	return PianoLayout(New(PianoHTML)).OnKey(PlaysAudio)
}
