package review

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	"image/png"
	"math"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/park285/Cheese-GameReview/internal/chess/board"
)

type MoveHighlight struct {
	From board.Square
	To   board.Square
	// Badge tints a marker in the corner of the destination square,
	// typically from the move classification.
	Badge color.Color
}

type RenderOptions struct {
	Highlight *MoveHighlight
	HUDHeader string
	HUDScore  string
	HUDTurn   string
}

type BoardRenderer interface {
	RenderPNG(ctx context.Context, pos *board.Position, opts RenderOptions) ([]byte, error)
}

type svgBoardRenderer struct {
	face font.Face
}

func NewSVGBoardRenderer() BoardRenderer {
	return &svgBoardRenderer{face: basicfont.Face7x13}
}

const (
	squareSize           = 72
	boardSquares         = 8
	boardSize            = squareSize * boardSquares
	sideMargin           = 36
	topMargin            = 110
	bottomMargin         = 36
	titleHeight          = 40
	secondaryPanelHeight = 32
	gapBetweenPanels     = 14
	gapToBoard           = 22
	panelRadius          = 12
	titlePaddingX        = 28
	scorePaddingX        = 24
	turnPaddingX         = 20
	titleMinWidth        = 320
	scoreMinWidth        = 96
	turnMinWidth         = 140
	shadowOffsetY        = 6
)

func (r *svgBoardRenderer) RenderPNG(ctx context.Context, pos *board.Position, opts RenderOptions) ([]byte, error) {
	if pos == nil {
		return nil, fmt.Errorf("position is nil")
	}

	totalWidth := boardSize + sideMargin*2
	totalHeight := boardSize + topMargin + bottomMargin
	boardOrigin := image.Point{X: sideMargin, Y: topMargin}
	boardRect := image.Rect(boardOrigin.X, boardOrigin.Y, boardOrigin.X+boardSize, boardOrigin.Y+boardSize)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img := image.NewRGBA(image.Rect(0, 0, totalWidth, totalHeight))
	imagedraw.Draw(img, img.Bounds(), image.NewUniform(backgroundColor), image.Point{}, imagedraw.Src)

	r.drawHUD(img, opts, boardRect)
	drawBoardShadow(img, boardRect)
	drawSquares(img, boardOrigin)
	if opts.Highlight != nil && pos.PieceAt(opts.Highlight.To).Color == board.White {
		drawSquareOverlay(img, opts.Highlight.From, boardOrigin, whiteMoveHighlightFill)
		drawSquareOverlay(img, opts.Highlight.To, boardOrigin, whiteMoveHighlightFill)
	}
	if err := drawPieces(img, pos, boardOrigin); err != nil {
		return nil, err
	}
	drawHighlight(img, pos, opts.Highlight, boardOrigin)
	r.drawCoordinates(img, boardOrigin)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return pngBuf.Bytes(), nil
}

var (
	backgroundColor           = color.RGBA{R: 22, G: 24, B: 34, A: 255}
	lightSquare               = color.RGBA{233, 207, 163, 255}
	darkSquare                = color.RGBA{187, 136, 96, 255}
	whiteMoveHighlightFill    = color.NRGBA{R: 255, G: 228, B: 120, A: 140}
	blackMoveHighlightArrow   = color.NRGBA{R: 148, G: 207, B: 255, A: 170}
	neutralMoveHighlightArrow = color.NRGBA{R: 182, G: 184, B: 190, A: 140}
	hudPanelColor             = color.NRGBA{R: 28, G: 31, B: 46, A: 250}
	hudTurnPanelColor         = color.NRGBA{R: 32, G: 35, B: 52, A: 245}
	hudShadowColor            = color.NRGBA{0, 0, 0, 50}
	hudTextPrimary            = color.NRGBA{R: 236, G: 239, B: 255, A: 255}
	hudTurnTextColor          = color.NRGBA{R: 204, G: 210, B: 236, A: 255}
	boardShadowColor          = color.NRGBA{0, 0, 0, 60}
	coordinateTextColor       = color.NRGBA{R: 8, G: 214, B: 120, A: 255}
)

// classBadges colors the destination badge per classification kind.
var classBadges = map[string]color.Color{
	"book":       color.NRGBA{R: 168, G: 136, B: 101, A: 255},
	"best":       color.NRGBA{R: 129, G: 182, B: 76, A: 255},
	"brilliant":  color.NRGBA{R: 27, G: 172, B: 166, A: 255},
	"excellent":  color.NRGBA{R: 150, G: 188, B: 75, A: 255},
	"good":       color.NRGBA{R: 150, G: 175, B: 139, A: 255},
	"inaccuracy": color.NRGBA{R: 247, G: 198, B: 49, A: 255},
	"mistake":    color.NRGBA{R: 255, G: 164, B: 89, A: 255},
	"blunder":    color.NRGBA{R: 250, G: 65, B: 45, A: 255},
}

func badgeColor(class string) color.Color {
	if c, ok := classBadges[class]; ok {
		return c
	}
	return nil
}

func drawBoardShadow(img *image.RGBA, boardRect image.Rectangle) {
	shadowRect := image.Rect(boardRect.Min.X+4, boardRect.Min.Y+8, boardRect.Max.X+10, boardRect.Max.Y+12)
	imagedraw.Draw(img, shadowRect, image.NewUniform(boardShadowColor), image.Point{}, imagedraw.Over)
}

func drawSquares(dst imagedraw.Image, origin image.Point) {
	for rank := 0; rank < boardSquares; rank++ {
		for file := 0; file < boardSquares; file++ {
			sq := board.NewSquare(file, rank)
			imagedraw.Draw(dst, squareRect(sq, origin), image.NewUniform(squareColor(sq)), image.Point{}, imagedraw.Src)
		}
	}
}

func drawPieces(dst imagedraw.Image, pos *board.Position, origin image.Point) error {
	for _, sq := range pos.Occupied(board.NoColor).Squares() {
		img, err := renderPieceImage(pos.PieceAt(sq), squareSize)
		if err != nil {
			return err
		}
		imagedraw.Draw(dst, squareRect(sq, origin), img, image.Point{}, imagedraw.Over)
	}
	return nil
}

// drawHighlight marks the played move: a black move gets an arrow, a move
// whose mover cannot be seen on the board a neutral one. White's tint is
// painted under the pieces by RenderPNG.
func drawHighlight(img *image.RGBA, pos *board.Position, h *MoveHighlight, origin image.Point) {
	if h == nil {
		return
	}
	switch pos.PieceAt(h.To).Color {
	case board.White:
	case board.Black:
		drawArrow(img, h.From, h.To, origin, blackMoveHighlightArrow)
	default:
		drawArrow(img, h.From, h.To, origin, neutralMoveHighlightArrow)
	}
	if h.Badge != nil {
		rect := squareRect(h.To, origin)
		center := image.Pt(rect.Max.X-squareSize/8, rect.Min.Y+squareSize/8)
		drawDisc(img, center, squareSize/9, hudShadowColor)
		drawDisc(img, center, squareSize/10, h.Badge)
	}
}

func (r *svgBoardRenderer) drawHUD(img *image.RGBA, opts RenderOptions, boardRect image.Rectangle) {
	drawer := &font.Drawer{Dst: img, Face: r.face}

	title := strings.TrimSpace(opts.HUDHeader)
	if title == "" {
		title = "Game review"
	}
	scoreText := strings.TrimSpace(opts.HUDScore)
	if scoreText == "" {
		scoreText = "0.00"
	}
	turnText := strings.TrimSpace(opts.HUDTurn)
	if turnText == "" {
		turnText = "Turn"
	}

	turnBottom := boardRect.Min.Y - gapToBoard
	turnTop := turnBottom - secondaryPanelHeight
	titleBottom := turnTop - gapBetweenPanels
	titleTop := titleBottom - titleHeight
	scoreBottom := boardRect.Min.Y - gapToBoard
	scoreTop := scoreBottom - secondaryPanelHeight

	titleWidth := max(titleMinWidth, drawer.MeasureString(title).Round()+titlePaddingX*2)
	scoreWidth := max(scoreMinWidth, drawer.MeasureString(scoreText).Round()+scorePaddingX*2)
	turnWidth := max(turnMinWidth, drawer.MeasureString(turnText).Round()+turnPaddingX*2)

	titleWidth = min(titleWidth, max(titleMinWidth, boardRect.Dx()-scoreWidth-24))
	turnWidth = min(turnWidth, boardRect.Dx()-40)

	titleRect := image.Rect(boardRect.Min.X, titleTop, boardRect.Min.X+titleWidth, titleBottom)
	scoreRect := image.Rect(boardRect.Max.X-scoreWidth, scoreTop, boardRect.Max.X, scoreBottom)
	turnLeft := boardRect.Min.X + (boardRect.Dx()-turnWidth)/2
	turnRect := image.Rect(turnLeft, turnTop, turnLeft+turnWidth, turnBottom)

	for _, rect := range []image.Rectangle{titleRect, scoreRect, turnRect} {
		drawRoundedPanel(img, rect.Add(image.Pt(0, shadowOffsetY)), panelRadius, hudShadowColor)
	}

	title = truncateWithEllipsis(r.face, title, titleRect.Dx()-titlePaddingX*2)
	turnText = truncateWithEllipsis(r.face, turnText, turnRect.Dx()-turnPaddingX*2)

	drawRoundedPanel(img, titleRect, panelRadius, hudPanelColor)
	drawRoundedPanel(img, scoreRect, panelRadius, hudPanelColor)
	drawRoundedPanel(img, turnRect, panelRadius, hudTurnPanelColor)

	drawCenteredString(drawer, titleRect, title, hudTextPrimary)
	drawCenteredString(drawer, scoreRect, scoreText, hudTextPrimary)
	drawCenteredString(drawer, turnRect, turnText, hudTurnTextColor)
}

func drawSquareOverlay(img *image.RGBA, sq board.Square, origin image.Point, clr color.Color) {
	if !sq.Valid() {
		return
	}
	imagedraw.Draw(img, squareRect(sq, origin), image.NewUniform(clr), image.Point{}, imagedraw.Over)
}

func drawArrow(img *image.RGBA, from, to board.Square, origin image.Point, clr color.Color) {
	if from == to || !from.Valid() || !to.Valid() {
		return
	}
	startRect := squareRect(from, origin)
	endRect := squareRect(to, origin)
	start := image.Pt(startRect.Min.X+squareSize/2, startRect.Min.Y+squareSize/2)
	end := image.Pt(endRect.Min.X+squareSize/2, endRect.Min.Y+squareSize/2)

	dx := float64(end.X - start.X)
	dy := float64(end.Y - start.Y)
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}

	dirX := dx / length
	dirY := dy / length
	perpX := -dirY
	perpY := dirX

	baseLength := length - float64(squareSize)*0.45
	if baseLength < float64(squareSize)*0.35 {
		baseLength = length * 0.6
	}
	halfWidth := float64(squareSize) * 0.18
	headWidth := float64(squareSize) * 0.32

	baseX := float64(start.X) + dirX*baseLength
	baseY := float64(start.Y) + dirY*baseLength

	fillQuad(img,
		pointF{X: float64(start.X) - perpX*halfWidth, Y: float64(start.Y) - perpY*halfWidth},
		pointF{X: float64(start.X) + perpX*halfWidth, Y: float64(start.Y) + perpY*halfWidth},
		pointF{X: baseX + perpX*halfWidth, Y: baseY + perpY*halfWidth},
		pointF{X: baseX - perpX*halfWidth, Y: baseY - perpY*halfWidth},
		clr,
	)
	fillTriangleF(img,
		pointF{X: float64(end.X), Y: float64(end.Y)},
		pointF{X: baseX - perpX*headWidth/2, Y: baseY - perpY*headWidth/2},
		pointF{X: baseX + perpX*headWidth/2, Y: baseY + perpY*headWidth/2},
		clr,
	)
}

func truncateWithEllipsis(face font.Face, text string, maxWidth int) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || maxWidth <= 0 || face == nil {
		return trimmed
	}

	drawer := font.Drawer{Face: face}
	if drawer.MeasureString(trimmed).Round() <= maxWidth {
		return trimmed
	}

	const ellipsis = "..."
	if drawer.MeasureString(ellipsis).Round() > maxWidth {
		return ""
	}

	runes := []rune(trimmed)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := string(runes) + ellipsis
		if drawer.MeasureString(candidate).Round() <= maxWidth {
			return candidate
		}
	}
	return ellipsis
}

func drawRoundedPanel(img *image.RGBA, rect image.Rectangle, radius int, clr color.Color) {
	if rect.Empty() {
		return
	}
	radius = max(0, min(radius, rect.Dx()/2, rect.Dy()/2))
	fill := image.NewUniform(clr)
	if radius == 0 {
		imagedraw.Draw(img, rect, fill, image.Point{}, imagedraw.Over)
		return
	}

	bands := []image.Rectangle{
		image.Rect(rect.Min.X+radius, rect.Min.Y, rect.Max.X-radius, rect.Max.Y),
		image.Rect(rect.Min.X, rect.Min.Y+radius, rect.Min.X+radius, rect.Max.Y-radius),
		image.Rect(rect.Max.X-radius, rect.Min.Y+radius, rect.Max.X, rect.Max.Y-radius),
	}
	for _, b := range bands {
		if !b.Empty() {
			imagedraw.Draw(img, b, fill, image.Point{}, imagedraw.Over)
		}
	}

	corners := []image.Point{
		{rect.Min.X + radius, rect.Min.Y + radius},
		{rect.Max.X - radius - 1, rect.Min.Y + radius},
		{rect.Min.X + radius, rect.Max.Y - radius - 1},
		{rect.Max.X - radius - 1, rect.Max.Y - radius - 1},
	}
	for _, center := range corners {
		drawQuarterDisc(img, center, radius, clr, center.X < rect.Min.X+rect.Dx()/2, center.Y < rect.Min.Y+rect.Dy()/2)
	}
}

// drawQuarterDisc fills the corner quadrant of a disc so the bands and the
// corners never blend over each other.
func drawQuarterDisc(img *image.RGBA, center image.Point, radius int, clr color.Color, left, top bool) {
	rSquared := radius * radius
	for y := 0; y <= radius; y++ {
		for x := 0; x <= radius; x++ {
			// The bands already cover the axis rows.
			if x == 0 || y == 0 || x*x+y*y > rSquared {
				continue
			}
			px, py := center.X+x, center.Y+y
			if left {
				px = center.X - x
			}
			if top {
				py = center.Y - y
			}
			blendPixel(img, px, py, clr)
		}
	}
}

func drawCenteredString(drawer *font.Drawer, rect image.Rectangle, text string, clr color.Color) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	metrics := drawer.Face.Metrics()
	width := drawer.MeasureString(text).Round()
	x := max(rect.Min.X, rect.Min.X+(rect.Dx()-width)/2)
	baseline := rect.Min.Y + (rect.Dy()+metrics.Ascent.Ceil()-metrics.Descent.Ceil())/2
	drawer.Src = image.NewUniform(clr)
	drawer.Dot = fixed.P(x, baseline)
	drawer.DrawString(text)
}

func (r *svgBoardRenderer) drawCoordinates(dst imagedraw.Image, origin image.Point) {
	drawer := &font.Drawer{Dst: dst, Face: r.face, Src: image.NewUniform(coordinateTextColor)}
	ascent := r.face.Metrics().Ascent.Ceil()
	boardEndY := origin.Y + boardSize

	for i := 0; i < boardSquares; i++ {
		rankCenter := origin.Y + i*squareSize + squareSize/2
		drawCenteredText(drawer, string(rune('8'-i)), origin.X-sideMargin/2, rankCenter+ascent/2)

		fileCenter := origin.X + i*squareSize + squareSize/2
		drawCenteredText(drawer, string(rune('a'+i)), fileCenter, boardEndY+ascent)
	}
}

func drawDisc(img *image.RGBA, center image.Point, radius int, clr color.Color) {
	if radius <= 0 {
		blendPixel(img, center.X, center.Y, clr)
		return
	}
	rSquared := radius * radius
	for y := -radius; y <= radius; y++ {
		for x := -radius; x <= radius; x++ {
			if x*x+y*y > rSquared {
				continue
			}
			blendPixel(img, center.X+x, center.Y+y, clr)
		}
	}
}

func blendPixel(img *image.RGBA, x, y int, clr color.Color) {
	if !(image.Point{X: x, Y: y}).In(img.Bounds()) {
		return
	}

	sr, sg, sb, sa := clr.RGBA()
	srcA := float64(sa) / 65535.0
	if srcA <= 0 {
		return
	}
	// RGBA() is alpha-premultiplied.
	srcR := float64(sr) / 65535.0 / srcA
	srcG := float64(sg) / 65535.0 / srcA
	srcB := float64(sb) / 65535.0 / srcA

	dst := img.RGBAAt(x, y)
	dstA := float64(dst.A) / 255.0

	var dstR, dstG, dstB float64
	if dstA > 0 {
		inv := 1.0 / dstA
		dstR = float64(dst.R) / 255.0 * inv
		dstG = float64(dst.G) / 255.0 * inv
		dstB = float64(dst.B) / 255.0 * inv
	}

	outA := srcA + dstA*(1-srcA)
	if outA <= 0 {
		img.SetRGBA(x, y, color.RGBA{})
		return
	}

	outR := (srcR*srcA + dstR*dstA*(1-srcA)) / outA
	outG := (srcG*srcA + dstG*dstA*(1-srcA)) / outA
	outB := (srcB*srcA + dstB*dstA*(1-srcA)) / outA

	img.SetRGBA(x, y, color.RGBA{
		R: floatToUint8(outR * outA * 255.0),
		G: floatToUint8(outG * outA * 255.0),
		B: floatToUint8(outB * outA * 255.0),
		A: floatToUint8(outA * 255.0),
	})
}

func floatToUint8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}

// squareRect places a1 bottom left; the board is always drawn from White's
// side.
func squareRect(sq board.Square, origin image.Point) image.Rectangle {
	row := 7 - sq.Rank()
	col := sq.File()
	x := origin.X + col*squareSize
	y := origin.Y + row*squareSize
	return image.Rect(x, y, x+squareSize, y+squareSize)
}

func pointInTriangleFloat(x, y float64, a, b, c pointF) bool {
	denom := (b.Y-c.Y)*(a.X-c.X) + (c.X-b.X)*(a.Y-c.Y)
	if denom == 0 {
		return false
	}
	alpha := ((b.Y-c.Y)*(x-c.X) + (c.X-b.X)*(y-c.Y)) / denom
	beta := ((c.Y-a.Y)*(x-c.X) + (a.X-c.X)*(y-c.Y)) / denom
	gamma := 1 - alpha - beta
	return alpha >= 0 && beta >= 0 && gamma >= 0
}

func drawCenteredText(drawer *font.Drawer, text string, centerX, baseline int) {
	if text == "" {
		return
	}
	width := drawer.MeasureString(text).Round()
	drawer.Dot = fixed.P(centerX-width/2, baseline)
	drawer.DrawString(text)
}

func squareColor(sq board.Square) color.Color {
	if (sq.File()+sq.Rank())%2 == 0 {
		return darkSquare
	}
	return lightSquare
}

func fillQuad(img *image.RGBA, p0, p1, p2, p3 pointF, clr color.Color) {
	fillTriangleF(img, p0, p1, p2, clr)
	fillTriangleF(img, p0, p2, p3, clr)
}

func fillTriangleF(img *image.RGBA, a, b, c pointF, clr color.Color) {
	minX := int(math.Floor(min(a.X, b.X, c.X)))
	maxX := int(math.Ceil(max(a.X, b.X, c.X)))
	minY := int(math.Floor(min(a.Y, b.Y, c.Y)))
	maxY := int(math.Ceil(max(a.Y, b.Y, c.Y)))

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			if pointInTriangleFloat(float64(x)+0.5, float64(y)+0.5, a, b, c) {
				blendPixel(img, x, y, clr)
			}
		}
	}
}

type pointF struct {
	X float64
	Y float64
}
