// Package chart renders the dashboard bar charts as PNG images.
package chart

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sort"
	"strconv"
	"unicode/utf8"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/erazemk/transferlog/internal/model"
)

// Output size of every chart in pixels.
const (
	Width  = 720
	Height = 360
)

// Charts are drawn at this multiple of the output size and downscaled.
const supersample = 2

// Plot area margins.
const (
	marginLeft   = 50
	marginRight  = 20
	marginTop    = 50
	marginBottom = 40
)

const (
	glyphWidth  = 7
	glyphHeight = 13
	glyphAscent = 11
)

var (
	palette = []color.RGBA{
		{54, 162, 235, 255},
		{255, 99, 132, 255},
		{75, 192, 192, 255},
		{255, 159, 64, 255},
		{153, 102, 255, 255},
	}
	ink  = color.RGBA{33, 37, 41, 255}
	axis = color.RGBA{108, 117, 125, 255}
	grid = color.RGBA{222, 226, 230, 255}
)

// Group is one labelled cluster of bars, one value per series.
type Group struct {
	Label  string
	Values []int
}

// Chart describes a grouped bar chart.
type Chart struct {
	Title  string
	Series []string
	Groups []Group
}

// Image is a rendered chart.
type Image struct {
	Name  string
	Title string
	PNG   []byte
}

// DriverChart counts transfers per driver, ordered by driver name.
func DriverChart(stats model.Stats) Chart {
	names := make([]string, 0, len(stats.DriverCounts))
	for name := range stats.DriverCounts {
		names = append(names, name)
	}
	sort.Strings(names)

	c := Chart{Title: "Transfers by Driver", Series: []string{"Transfers"}}
	for _, name := range names {
		c.Groups = append(c.Groups, Group{Label: name, Values: []int{stats.DriverCounts[name]}})
	}
	return c
}

// LocationChart compares outgoing and incoming transfers for every location.
func LocationChart(stats model.Stats) Chart {
	c := Chart{Title: "Transfers by Location", Series: []string{"From", "To"}}
	for _, loc := range model.Locations {
		c.Groups = append(c.Groups, Group{
			Label:  loc,
			Values: []int{stats.FromLocationCounts[loc], stats.ToLocationCounts[loc]},
		})
	}
	return c
}

// RenderAll renders the driver and location charts for stats.
func RenderAll(stats model.Stats) ([]Image, error) {
	charts := []struct {
		name  string
		chart Chart
	}{
		{"drivers", DriverChart(stats)},
		{"locations", LocationChart(stats)},
	}

	images := make([]Image, 0, len(charts))
	for _, c := range charts {
		data, err := Render(c.chart)
		if err != nil {
			return nil, fmt.Errorf("rendering %s chart: %w", c.name, err)
		}
		images = append(images, Image{Name: c.name, Title: c.chart.Title, PNG: data})
	}
	return images, nil
}

// Render draws c and encodes it as PNG.
func Render(c Chart) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, Width*supersample, Height*supersample))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	cv := &canvas{img: img}

	cv.text(c.Title, (Width-textWidth(c.Title))/2, 10, ink)

	x0, x1 := marginLeft, Width-marginRight
	y0, y1 := marginTop, Height-marginBottom

	top, step := axisScale(maxValue(c.Groups))
	for v := 0; v <= top; v += step {
		y := y1 - v*(y1-y0)/top
		cv.rect(x0, y, x1, y+1, grid)
		label := strconv.Itoa(v)
		cv.text(label, x0-6-textWidth(label), y-glyphHeight/2, axis)
	}
	cv.rect(x0, y0, x0+1, y1+1, axis)
	cv.rect(x0, y1, x1, y1+1, axis)

	if len(c.Groups) == 0 {
		msg := "No data"
		cv.text(msg, x0+(x1-x0-textWidth(msg))/2, (y0+y1)/2, axis)
		return encode(fit(img, Width, Height))
	}

	series := max(len(c.Series), 1)
	groupWidth := (x1 - x0) / len(c.Groups)
	barWidth := max(groupWidth*7/10/series, 1)

	for i, g := range c.Groups {
		left := x0 + i*groupWidth + (groupWidth-barWidth*series)/2
		for j, v := range g.Values {
			h := v * (y1 - y0) / top
			bx := left + j*barWidth
			cv.rect(bx, y1-h, bx+barWidth, y1, palette[j%len(palette)])
			if v > 0 {
				label := strconv.Itoa(v)
				cv.text(label, bx+(barWidth-textWidth(label))/2, y1-h-glyphHeight-2, ink)
			}
		}
		label := truncate(g.Label, groupWidth/glyphWidth)
		cv.text(label, x0+i*groupWidth+(groupWidth-textWidth(label))/2, y1+8, ink)
	}

	if len(c.Series) > 1 {
		width := 0
		for _, s := range c.Series {
			width += 14 + textWidth(s) + 16
		}
		lx := x1 - width
		for j, s := range c.Series {
			cv.rect(lx, 30, lx+10, 40, palette[j%len(palette)])
			cv.text(s, lx+14, 29, ink)
			lx += 14 + textWidth(s) + 16
		}
	}

	return encode(fit(img, Width, Height))
}

// canvas draws in output coordinates onto a supersampled image.
type canvas struct {
	img *image.RGBA
}

func (cv *canvas) rect(x0, y0, x1, y1 int, c color.Color) {
	r := image.Rect(x0*supersample, y0*supersample, x1*supersample, y1*supersample)
	draw.Draw(cv.img, r, image.NewUniform(c), image.Point{}, draw.Src)
}

// text draws s with its top-left corner at (x, y).
func (cv *canvas) text(s string, x, y int, c color.Color) {
	if s == "" {
		return
	}
	w := textWidth(s)
	glyphs := image.NewRGBA(image.Rect(0, 0, w, glyphHeight))
	d := &font.Drawer{
		Dst:  glyphs,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(0, glyphAscent),
	}
	d.DrawString(s)

	dst := image.Rect(x*supersample, y*supersample, (x+w)*supersample, (y+glyphHeight)*supersample)
	draw.NearestNeighbor.Scale(cv.img, dst, glyphs, glyphs.Bounds(), draw.Over, nil)
}

func textWidth(s string) int {
	return utf8.RuneCountInString(s) * glyphWidth
}

func truncate(s string, maxChars int) string {
	r := []rune(s)
	if maxChars < 2 || len(r) <= maxChars {
		return s
	}
	return string(r[:maxChars-1]) + "."
}

func maxValue(groups []Group) int {
	m := 0
	for _, g := range groups {
		for _, v := range g.Values {
			m = max(m, v)
		}
	}
	return m
}

// axisScale returns the top of the value axis and the tick step, using at
// most five ticks.
func axisScale(maxVal int) (top, step int) {
	if maxVal <= 0 {
		return 1, 1
	}
	step = (maxVal + 4) / 5
	top = ((maxVal + step - 1) / step) * step
	return top, step
}

// fit scales img to exactly w x h using Catmull-Rom interpolation.
func fit(img image.Image, w, h int) image.Image {
	b := img.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

func encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}
