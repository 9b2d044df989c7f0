package tools

import (
	"context"
	"encoding/json"

	"github.com/aitools/aitools/internal/schema"
	"github.com/aitools/aitools/internal/service"
)

// shopCatalogTool is the tool name on the storefront MCP server.
const shopCatalogTool = "search_shop_catalog"

const searchProductsDescription = `Search for products from the online store, hosted on Shopify.

This tool can be used to search for products using natural language queries, specific filter criteria, or both.

Best practices:
- Searches return available_filters which can be used for refined follow-up searches
- When filtering, use ONLY the filters from available_filters in follow-up searches
- For specific filter searches (category, variant option, product type, etc.), use simple terms without the filter name (e.g., "red" not "red color")
- For filter-specific searches, first perform a normal search to discover available filters, then search again using the proper filter with just the specific search term
- Results are paginated, with initial results limited to improve experience
- Use the after parameter with endCursor to fetch additional pages when users request more results

The response includes product details, available variants, filter options, and pagination info.`

type Metafield struct {
	Key       string `json:"key,omitempty"`
	Namespace string `json:"namespace,omitempty"`
	Value     string `json:"value,omitempty"`
}

type PriceFilter struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

type CategoryFilter struct {
	ID string `json:"id,omitempty"`
}

type VariantOption struct {
	Name  string `json:"name,omitempty"`
	Value string `json:"value,omitempty"`
}

type ProductFilter struct {
	Available         bool            `json:"available"`
	Category          *CategoryFilter `json:"category,omitempty"`
	Price             *PriceFilter    `json:"price,omitempty"`
	ProductMetafield  *Metafield      `json:"productMetafield,omitempty"`
	ProductType       string          `json:"productType,omitempty"`
	ProductVendor     string          `json:"productVendor,omitempty"`
	Tag               string          `json:"tag,omitempty"`
	TaxonomyMetafield *Metafield      `json:"taxonomyMetafield,omitempty"`
	VariantMetafield  *Metafield      `json:"variantMetafield,omitempty"`
	VariantOption     *VariantOption  `json:"variantOption,omitempty"`
}

type SearchProductsInput struct {
	Query    string          `json:"query"`
	Filters  []ProductFilter `json:"filters,omitempty"`
	Country  string          `json:"country,omitempty"`
	Language string          `json:"language,omitempty"`
	Limit    int             `json:"limit"`
	After    string          `json:"after,omitempty"`
	Context  string          `json:"context"`
}

type ProductVariant struct {
	VariantID string `json:"variant_id"`
	Title     string `json:"title"`
	Price     string `json:"price"`
	Currency  string `json:"currency"`
	ImageURL  string `json:"image_url,omitempty"`
}

type PriceRange struct {
	Currency string `json:"currency"`
	Max      string `json:"max"`
	Min      string `json:"min"`
}

type Product struct {
	ProductID   string           `json:"product_id"`
	Title       string           `json:"title"`
	Variants    []ProductVariant `json:"variants,omitempty"`
	URL         string           `json:"url,omitempty"`
	ImageURL    string           `json:"image_url,omitempty"`
	Description string           `json:"description,omitempty"`
	PriceRange  *PriceRange      `json:"price_range,omitempty"`
}

type ProductSearchResult struct {
	Text     string    `json:"text,omitempty"`
	Products []Product `json:"products"`
}

func metafieldSchema(desc string) schema.Field {
	return schema.Nested(desc,
		schema.Prop("key", schema.String("The key of the metafield to filter by.")),
		schema.Prop("namespace", schema.String("The namespace of the metafield to filter by.")),
		schema.Prop("value", schema.String("The value of the metafield to filter by.")),
	)
}

func searchProductsSchema() schema.Schema {
	filter := schema.Nested("",
		schema.Prop("available", schema.Boolean("Filter on if the product is available for sale.").WithDefault(true)),
		schema.Prop("category", schema.Nested("Category ID to filter by.",
			schema.Prop("id", schema.String("Category ID to filter by.")),
		)),
		schema.Prop("price", schema.Nested("Price range to filter by.",
			schema.Prop("min", schema.Number("Minimum price to filter by, represented as a float, e.g. 50.0.")),
			schema.Prop("max", schema.Number("Maximum price to filter by, represented as a float, e.g. 100.0.")),
		)),
		schema.Prop("productMetafield", metafieldSchema("Filter on a product metafield.")),
		schema.Prop("productType", schema.String("Product type to filter by.")),
		schema.Prop("productVendor", schema.String("Product vendor to filter by.")),
		schema.Prop("tag", schema.String("Tag to filter by.")),
		schema.Prop("taxonomyMetafield", metafieldSchema("Taxonomy metafield to filter by.")),
		schema.Prop("variantMetafield", metafieldSchema("Variant metafield to filter by.")),
		schema.Prop("variantOption", schema.Nested("Variant option to filter by.",
			schema.Prop("name", schema.String("Name of the variant option to filter by.")),
			schema.Prop("value", schema.String("Value of the variant option to filter by.")),
		)),
	)
	return schema.Object(
		schema.Prop("query", schema.String("A natural language query.").Require()),
		schema.Prop("filters", schema.Array("Filters to apply to the search. Only apply filters from the available_filters returned in a previous response.", filter)),
		schema.Prop("country", schema.String("ISO 3166-1 alpha-2 country code for which to return localized results (e.g., 'US', 'CA', 'GB').")),
		schema.Prop("language", schema.String("ISO 639-1 language code for which to return localized results (e.g., 'EN', 'FR', 'DE').")),
		schema.Prop("limit", schema.Integer("Maximum number of products to return. Defaults to 10, maximum is 250.").Between(1, 250).WithDefault(10)),
		schema.Prop("after", schema.String("Pagination cursor to fetch the next page of results. Use the endCursor from the previous response.")),
		schema.Prop("context", schema.String("Additional information about the request such as user demographics, mood, location, or other relevant details.").Require()),
	)
}

// SearchProducts forwards catalog searches to a storefront MCP server.
func SearchProducts(shop *service.MCPClient) (*Tool[SearchProductsInput, ProductSearchResult], error) {
	return New(Spec[SearchProductsInput, ProductSearchResult]{
		Name:        "search-products",
		Description: searchProductsDescription,
		Input:       searchProductsSchema(),
		Policy:      PolicyFallback,
		Execute: func(ctx context.Context, in SearchProductsInput) (ProductSearchResult, error) {
			res, err := shop.CallTool(ctx, shopCatalogTool, in)
			if err != nil {
				return ProductSearchResult{}, err
			}
			out := ProductSearchResult{Text: res.Text}
			if res.Structured != nil {
				if err := json.Unmarshal(res.Structured, &out); err != nil {
					return ProductSearchResult{}, &service.UpstreamError{Service: shopCatalogTool, Message: "decode products", Err: err}
				}
				out.Text = res.Text
			}
			if out.Products == nil {
				out.Products = []Product{}
			}
			return out, nil
		},
		Fallback: productSearchFallback,
	})
}

func productSearchFallback() ProductSearchResult {
	return ProductSearchResult{
		Products: []Product{
			{
				ProductID:   "1",
				Title:       "Product 1",
				Variants:    []ProductVariant{{VariantID: "1", Title: "Variant 1", Price: "100", Currency: "USD"}},
				URL:         "https://example.com/product-1",
				ImageURL:    "https://demo.vercel.store/_next/image?url=https%3A%2F%2Fcdn.shopify.com%2Fs%2Ffiles%2F1%2F0754%2F3727%2F7491%2Ffiles%2Ft-shirt-1.png%3Fv%3D1689798965&w=3840&q=75",
				Description: "Product 1 description",
				PriceRange:  &PriceRange{Currency: "USD", Max: "100", Min: "50"},
			},
			{
				ProductID:   "2",
				Title:       "Product 2",
				Variants:    []ProductVariant{{VariantID: "1", Title: "Variant 2", Price: "100", Currency: "USD"}},
				URL:         "https://example.com/product-2",
				ImageURL:    "https://demo.vercel.store/_next/image?url=https%3A%2F%2Fcdn.shopify.com%2Fs%2Ffiles%2F1%2F0754%2F3727%2F7491%2Ffiles%2Fcup-black.png%3Fv%3D1690003088&w=1200&q=75",
				Description: "Product 2 description",
				PriceRange:  &PriceRange{Currency: "USD", Max: "150", Min: "100"},
			},
		},
	}
}
