package service

import (
	"fmt"
	"strconv"
	"strings"
)

// BuildExtractionScript produces a self-contained script executed inside
// the remote page to scan the search results DOM for product cards,
// drop sponsored cards, and return a structured result. The sponsorship
// check is re-implemented in the script because it runs in a different
// execution context. Runtime errors are returned as a success=false
// payload; the execution boundary cannot carry exceptions back.
func BuildExtractionScript(baseURL string, minRating *float64) string {
	minRatingJS := "null"
	if minRating != nil {
		minRatingJS = strconv.FormatFloat(*minRating, 'f', -1, 64)
	}

	script := `
(function() {
    function isSponsored(card) {
        if (!card || !card.querySelector) {
            return false;
        }

        // A. Ad-specific DOM attributes
        if (card.querySelector('[data-ad-id], [data-sponsored], [data-ad-slot]')) {
            return true;
        }

        // B. Sponsored routing / tracking links
        for (const a of card.querySelectorAll('a[href]')) {
            const href = a.href || '';
            if (
                href.includes('/sspa/') ||
                href.includes('/gp/slredirect/') ||
                href.includes('sp_atk=') ||
                href.includes('sp_csd=') ||
                href.includes('sp_btf=')
            ) {
                return true;
            }
        }

        // C. Disclosure text (last line of defense)
        if (card.innerText.toLowerCase().includes('sponsored')) {
            return true;
        }

        return false;
    }

    function extractPrice(card) {
        const priceEl = card.querySelector('.a-price .a-offscreen');
        if (!priceEl) return null;
        const parsed = parseInt(priceEl.textContent.replace(/[₹,]/g, ''), 10);
        return isNaN(parsed) ? null : parsed;
    }

    function extractRating(card) {
        const ratingEl = card.querySelector(
            'i[data-cy="reviews-ratings-slot"] span.a-icon-alt'
        );

        if (!ratingEl) {
            const fallbackEl = card.querySelector('.a-icon-alt, [aria-label*="stars"]');
            if (!fallbackEl) return null;
            const ratingText = fallbackEl.innerText || fallbackEl.getAttribute('aria-label') || '';
            const match = ratingText.match(/([\d.]+)\s*out of\s*5/i);
            return match ? parseFloat(match[1]) : null;
        }

        const match = ratingEl.textContent.match(/([\d.]+)\s*out of\s*5/i);
        return match ? parseFloat(match[1]) : null;
    }

    function extractProduct(card) {
        if (!card) {
            return null;
        }

        const asin = card.getAttribute('data-asin') || null;

        const titleEl = card.querySelector('h2 span, h2 a span, .s-title-instructions-style span');
        const title = titleEl?.innerText?.trim() ||
                     card.querySelector('h2')?.innerText?.trim() ||
                     null;

        const price = extractPrice(card);
        const rating = extractRating(card);

        const linkEl = card.querySelector('a[href*="/dp/"], a[href*="/gp/product/"]');
        let url = null;
        if (linkEl) {
            url = linkEl.href || linkEl.getAttribute('href');
            if (url && url.startsWith('/')) {
                url = '__BASE_URL__' + url;
            }
        }

        return {
            asin: asin,
            title: title,
            price: price,
            rating: rating,
            url: url,
            sponsored: isSponsored(card)
        };
    }

    function extractAllProducts() {
        // Primary structural selector, then progressively looser fallbacks
        let productElements = Array.from(
            document.querySelectorAll(
                'div[role="listitem"][data-component-type="s-search-result"][data-asin]'
            )
        ).filter(card => !isSponsored(card));

        if (productElements.length === 0) {
            const fallbackSelectors = [
                '[data-component-type="s-search-result"][data-asin]',
                '.s-result-item[data-asin]',
                '[data-asin]:not([data-asin=""])'
            ];

            for (const selector of fallbackSelectors) {
                const elements = document.querySelectorAll(selector);
                if (elements.length > 0) {
                    productElements = Array.from(elements).filter(card => !isSponsored(card));
                    break;
                }
            }
        }

        const products = [];
        for (const card of productElements) {
            const product = extractProduct(card);
            if (product && product.asin) {
                products.push(product);
            }
        }

        const minRating = __MIN_RATING__;
        if (minRating !== null && minRating !== undefined) {
            return products.filter(product =>
                product.rating !== null && product.rating >= minRating
            );
        }

        return products;
    }

    try {
        const products = extractAllProducts();
        return {
            success: true,
            products: products,
            count: products.length
        };
    } catch (error) {
        return {
            success: false,
            error: error.message,
            products: []
        };
    }
})();
`
	script = strings.ReplaceAll(script, "__BASE_URL__", baseURL)
	script = strings.ReplaceAll(script, "__MIN_RATING__", minRatingJS)
	return script
}

// BuildPriceSliderScript produces a script driving Amazon's two-handle
// price range slider to the target bounds. Returns "" when neither bound
// is set.
//
// The widget's index-to-price mapping is bucketed and not strictly
// monotonic across the whole range, so each handle is moved by a forward
// linear scan that stops at the first index whose readback price crosses
// the target, rather than a binary search.
func BuildPriceSliderScript(minPrice, maxPrice *float64) string {
	if minPrice == nil && maxPrice == nil {
		return ""
	}

	minJS, maxJS := "null", "null"
	if minPrice != nil {
		minJS = strconv.Itoa(int(*minPrice))
	}
	if maxPrice != nil {
		maxJS = strconv.Itoa(int(*maxPrice))
	}

	return fmt.Sprintf(`
(function () {
    const targetMin = %s;
    const targetMax = %s;

    const minSlider = document.querySelector('input[id*="lower-bound-slider"]');
    const maxSlider = document.querySelector('input[id*="upper-bound-slider"]');

    if (!minSlider || !maxSlider) {
        return { success: false, reason: "Sliders not found" };
    }

    const extractPrice = (text) => {
        if (!text) return null;
        const m = text.match(/[₹]?([\d,]+)/);
        return m ? parseInt(m[1].replace(/,/g, ""), 10) : null;
    };

    const setByPrice = (slider, target) => {
        const maxIndex = parseInt(slider.max, 10);
        for (let i = 0; i <= maxIndex; i++) {
            slider.value = i;
            slider.dispatchEvent(new Event("input", { bubbles: true }));
            const price = extractPrice(slider.getAttribute("aria-valuetext"));
            if (price !== null && price >= target) {
                slider.dispatchEvent(new Event("change", { bubbles: true }));
                return { index: i, price };
            }
        }
        return null;
    };

    let minResult = null;
    let maxResult = null;

    if (targetMin !== null) {
        minResult = setByPrice(minSlider, targetMin);
    }

    if (targetMax !== null) {
        maxResult = setByPrice(maxSlider, targetMax);
    }

    // Safety: keep max handle past the min handle
    if (minResult && maxResult && maxResult.index < minResult.index) {
        maxSlider.value = minResult.index + 1;
        maxSlider.dispatchEvent(new Event("input", { bubbles: true }));
        maxSlider.dispatchEvent(new Event("change", { bubbles: true }));
    }

    return {
        success: true,
        min: minResult,
        max: maxResult
    };
})();
`, minJS, maxJS)
}
