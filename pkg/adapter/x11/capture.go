package x11

import (
	"image"

	"github.com/jezek/xgb/xproto"
	"github.com/pkg/errors"

	"github.com/ber2minsin/intime/pkg/window"
)

// CaptureWindow grabs the current contents of one window as RGBA. When
// the window itself is not viewable (reparenting window managers wrap
// clients in frame windows) the first viewable child of useful size is
// captured instead.
func (a *Adapter) CaptureWindow(id window.ID) (*image.RGBA, error) {
	win := xproto.Window(id)

	attrs, err := xproto.GetWindowAttributes(a.conn, win).Reply()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get window attributes")
	}

	if attrs.Class != xproto.WindowClassInputOutput || attrs.MapState != xproto.MapStateViewable {
		child, err := a.findCapturableChild(win)
		if err != nil {
			return nil, errors.Wrap(err, "no capturable window found")
		}
		win = child
	}

	geom, err := xproto.GetGeometry(a.conn, xproto.Drawable(win)).Reply()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get window geometry")
	}

	reply, err := xproto.GetImage(
		a.conn,
		xproto.ImageFormatZPixmap,
		xproto.Drawable(win),
		0, 0,
		geom.Width, geom.Height,
		0xffffffff,
	).Reply()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get image")
	}

	return convertBGRA(reply.Data, int(geom.Width), int(geom.Height), int(a.screen.RootDepth)), nil
}

func (a *Adapter) findCapturableChild(parent xproto.Window) (xproto.Window, error) {
	tree, err := xproto.QueryTree(a.conn, parent).Reply()
	if err != nil {
		return 0, errors.Wrap(err, "failed to query tree")
	}

	for _, child := range tree.Children {
		attrs, err := xproto.GetWindowAttributes(a.conn, child).Reply()
		if err != nil {
			continue
		}

		geom, err := xproto.GetGeometry(a.conn, xproto.Drawable(child)).Reply()
		if err != nil {
			continue
		}

		if attrs.Class == xproto.WindowClassInputOutput && attrs.MapState == xproto.MapStateViewable {
			if geom.Width > 10 && geom.Height > 10 {
				return child, nil
			}
		}

		if grandchild, err := a.findCapturableChild(child); err == nil {
			return grandchild, nil
		}
	}

	return 0, errors.New("no capturable child found")
}

// convertBGRA converts ZPixmap data (BGRA byte order at depth 24 or 32)
// into an RGBA image. Unsupported depths produce a blank frame.
func convertBGRA(data []byte, width, height, depth int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	if depth != 24 && depth != 32 {
		return img
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			src := (y*width + x) * 4
			if src+3 >= len(data) {
				return img
			}
			dst := img.PixOffset(x, y)
			img.Pix[dst+0] = data[src+2]
			img.Pix[dst+1] = data[src+1]
			img.Pix[dst+2] = data[src+0]
			img.Pix[dst+3] = 255
		}
	}
	return img
}
