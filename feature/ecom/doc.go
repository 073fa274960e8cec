// Package ecom is the product backend: SKU search, the descriptions
// updater and the images updater.
//
// Descriptions map the sheet's short and long texts onto the product
// description and content attributes. Writes are wrapped in a "product"
// object.
//
// Images run in one of three modes. Append skips URLs the product already
// has unless forced and numbers new images after the existing ones.
// Replace deletes every existing image, ignoring individual failures, and
// uploads the new set numbered from 1. Skip does nothing. Only http and
// https URLs are ever submitted.
package ecom
