// Package form issues and redeems tokenized form links. A form token carries
// a form type and a free-form payload; redeeming one through Handler maps the
// form onto an operator transition of the workflow.
package form
