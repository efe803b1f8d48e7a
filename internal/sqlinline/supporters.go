package sqlinline

const QListSupporters = `--sql 83f586db-4940-4da6-ac4b-f5b29d080e63
select id::text, name, amount::float8, message, created_at
from supporters
order by amount desc, created_at asc;
`

const QInsertSupporter = `--sql 8f8a3c77-7fc5-4a44-aa7d-18ca5ab9ba76
insert into supporters(id, name, amount, message, created_at, updated_at)
values (gen_random_uuid(), $1::text, round($2::numeric, 2), $3::text, now(), now())
returning id::text, name, amount::float8, message, created_at;
`

const QUpdateSupporter = `--sql e82aae55-af84-4b7d-bbee-017130d1ca42
update supporters
set name = $2::text, amount = round($3::numeric, 2), message = $4::text, updated_at = now()
where id = $1::uuid
returning id::text, name, amount::float8, message, created_at;
`

const QDeleteSupporter = `--sql 702caaae-d292-486b-b799-68063d1aedf9
delete from supporters
where id = $1::uuid;
`

const QCountSupporters = `--sql 9f36f1f1-d12e-4043-8179-b37d9c4c225d
select count(*)::int, coalesce(sum(amount), 0)::float8
from supporters;
`
