package main

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/wricardo/doorway/game/engine"
)

// cellWidth is the number of screen columns per grid cell
const cellWidth = 2

var (
	styleFloor   = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleTile    = tcell.StyleDefault.Foreground(tcell.ColorOlive)
	styleStatic  = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	styleDoor    = tcell.StyleDefault.Foreground(tcell.ColorBlue)
	styleTransit = tcell.StyleDefault.Foreground(tcell.ColorFuchsia).Bold(true)
	styleWinning = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	styleBody    = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleClone   = tcell.StyleDefault.Foreground(tcell.ColorYellow).Dim(true)
	styleCursor  = tcell.StyleDefault.Foreground(tcell.ColorWhite).Reverse(true)
	styleStatus  = tcell.StyleDefault.Foreground(tcell.ColorAqua)
	styleHelp    = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

// bounds is the grid rectangle in view, inclusive
type bounds struct {
	minX, maxX, minY, maxY int
}

func (b *bounds) include(s engine.Spot) {
	b.minX, b.maxX = min(b.minX, s.X), max(b.maxX, s.X)
	b.minY, b.maxY = min(b.minY, s.Y), max(b.maxY, s.Y)
}

// viewBounds covers every placed entity, the bodies and the cursor when editing
func (g *Game) viewBounds() bounds {
	c := g.world.Collections()
	b := bounds{minX: math.MaxInt, maxX: math.MinInt, minY: math.MaxInt, maxY: math.MinInt}
	for _, category := range engine.AllCategories {
		for _, s := range c.Spots(category) {
			b.include(s)
		}
	}
	if g.inEditor || b.minX == math.MaxInt {
		b.include(c.Cursor)
	}
	return b
}

// screenPos converts a renderer-space position to a screen cell. Grid y grows upward.
func (b bounds) screenPos(v engine.Vec3, originX, originY int) (int, int) {
	x := originX + int(math.Round(float64((v.X-float32(b.minX))*cellWidth)))
	y := originY + int(math.Round(float64(float32(b.maxY)-v.Z)))
	return x, y
}

func (g *Game) draw() {
	g.screen.Clear()

	b := g.viewBounds()
	width, height := g.screen.Size()
	gridW := (b.maxX - b.minX + 1) * cellWidth
	gridH := b.maxY - b.minY + 1
	originX := max(0, (width-gridW)/2)
	originY := max(1, (height-gridH-3)/2)

	put := func(v engine.Vec3, r rune, style tcell.Style) {
		x, y := b.screenPos(v, originX, originY)
		if x >= 0 && x < width && y >= 0 && y < height {
			g.screen.SetContent(x, y, r, nil, style)
		}
	}

	for _, v := range g.world.Positions(engine.Floor) {
		put(v, '.', styleFloor)
	}
	for _, v := range g.world.Positions(engine.Tiles) {
		put(v, ',', styleTile)
	}
	for _, v := range g.world.Positions(engine.Winning) {
		put(v, 'W', styleWinning)
	}

	// the door feed is non-empty only while a body is transiting
	uniforms := g.world.DoorUniforms()
	doorStyle := styleDoor
	if uniforms[0][0] > 0 {
		doorStyle = styleTransit
	}
	for i, v := range g.world.DoorsPositions() {
		put(v, rune('0'+i%10), doorStyle)
	}
	for _, v := range g.world.Positions(engine.Static) {
		put(v, '#', styleStatic)
	}

	if g.world.Travel() {
		for _, v := range g.world.ClonePositions() {
			if v.X <= float32(engine.DeadSpot.X) {
				continue
			}
			put(v, '@', styleClone)
		}
	}
	for _, v := range g.world.BodyPositions() {
		put(v, '@', styleBody)
	}

	if g.inEditor {
		cursor := g.world.CursorPosition()
		x, y := b.screenPos(cursor, originX, originY)
		r, _, _, _ := g.screen.GetContent(x, y)
		put(cursor, r, styleCursor)
	}

	g.drawStatus(width, height)
	g.screen.Show()
}

func (g *Game) drawStatus(width, height int) {
	title := fmt.Sprintf(" %s  |  moves %d", g.levelID, g.moves)
	if g.level != nil && g.level.Name != "" && g.level.Name != g.levelID {
		title = fmt.Sprintf(" %s (%s)  |  moves %d", g.level.Name, g.levelID, g.moves)
	}
	if g.inEditor {
		title += "  |  EDITOR"
	}
	g.drawText(0, 0, width, title, styleStatus)

	if g.status != "" {
		g.drawText(0, height-2, width, " "+g.status, styleStatus)
	}

	help := " arrows move  z back  r reset  v/b level  h editor  q quit"
	if g.inEditor {
		help = " u body  i static  o win  j door  y tile  g floor  n remove  p save  k clone  m/l/9/0 list"
	}
	g.drawText(0, height-1, width, help, styleHelp)
}

func (g *Game) drawText(x, y, width int, text string, style tcell.Style) {
	for _, r := range text {
		if x >= width {
			return
		}
		g.screen.SetContent(x, y, r, nil, style)
		x++
	}
}
