package sqlinline

const QSelectProviderKey = `--sql 2c7b9e14-6a3f-4d58-b0e2-91f4c8a6d3b7
select token, properties, updated_at
from integration_tokens
where provider = $1::text
limit 1;
`

const QUpsertProviderKey = `--sql f4a81c2e-93b7-4e06-8d5a-7c1e0b29f6d4
insert into integration_tokens (id, provider, token, properties, created_at, updated_at)
values (gen_random_uuid(), $1::text, $2::text, coalesce($3::jsonb, '{}'::jsonb), $4::timestamptz, $4::timestamptz)
on conflict (provider) do update set
    token = excluded.token,
    properties = integration_tokens.properties || excluded.properties,
    updated_at = excluded.updated_at;
`

const QDeleteProviderKey = `--sql 8e3d5f70-1b2c-4a96-9f47-d6a0c3b8e152
delete from integration_tokens
where provider = $1::text;
`
