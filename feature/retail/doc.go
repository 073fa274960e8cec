// Package retail is the item backend: account scoped item search, SKU
// probing, custom field discovery and the custom_fields and weight
// updaters.
//
// SKUs are searched on customSku, sku, manufacturerSku and defaultAlias in
// that order. The item endpoint answers with an object for one match and
// a list otherwise; both shapes are accepted.
//
// Custom field discovery reads one sample item and matches its
// customFieldN values against "Title Short" and "Meta Title". When nothing
// matches, customField1 and customField2 are assumed.
package retail
