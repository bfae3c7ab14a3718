package catalog

// DefaultImageURL stands in for a missing image.
const DefaultImageURL = "/images/default-product.jpg"

// ImageAt returns the image at index i, or DefaultImageURL for an empty slot
// or an index out of range.
func ImageAt(urls []string, i int) string {
	if i < 0 || i >= len(urls) || urls[i] == "" {
		return DefaultImageURL
	}
	return urls[i]
}

// Carousel walks a product's images, wrapping at both ends. A product
// without images still shows one placeholder slot.
type Carousel struct {
	urls  []string
	index int
}

func NewCarousel(urls []string) *Carousel {
	return &Carousel{urls: urls}
}

func (c *Carousel) Len() int {
	if len(c.urls) == 0 {
		return 1
	}
	return len(c.urls)
}

func (c *Carousel) Index() int { return c.index }

func (c *Carousel) Current() string { return ImageAt(c.urls, c.index) }

func (c *Carousel) Next() string {
	c.index = (c.index + 1) % c.Len()
	return c.Current()
}

func (c *Carousel) Prev() string {
	n := c.Len()
	c.index = (c.index - 1 + n) % n
	return c.Current()
}

// Seek moves to index i modulo the slot count.
func (c *Carousel) Seek(i int) string {
	n := c.Len()
	c.index = ((i % n) + n) % n
	return c.Current()
}
